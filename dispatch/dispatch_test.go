package dispatch

import (
	"testing"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/guard"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	allow := guard.Decision{Action: guard.Allow}
	deferred := guard.Decision{Action: guard.Defer}

	cases := []struct {
		name  string
		route models.RouteDescriptor
		want  models.PresentationContext
	}{
		{"driver route", models.RouteDescriptor{RequiredRole: models.RoleDriver}, models.ContextDriver},
		{"admin route", models.RouteDescriptor{RequiredRole: models.RoleAdmin}, models.ContextAdmin},
		{"kitchen route", models.RouteDescriptor{RequiredRole: models.RoleKitchen}, models.ContextKitchen},
		{"manager route", models.RouteDescriptor{RequiredRole: models.RoleManager}, models.ContextManager},
		{"plain authed route", models.RouteDescriptor{RequiresAuth: true}, models.ContextCustomer},
		{"public route", models.RouteDescriptor{}, models.ContextCustomer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Select(tc.route, allow))
			// deferred renders pick the same context as allowed ones
			assert.Equal(t, tc.want, Select(tc.route, deferred))
		})
	}
}
