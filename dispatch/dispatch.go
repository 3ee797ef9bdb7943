package dispatch

import (
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/guard"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
)

// Select maps an authorized route to the presentation context that
// renders it. It is a pure lookup with no failure modes, called only for
// ALLOW or DEFER decisions; the guard has already redirected everything
// else.
func Select(route models.RouteDescriptor, decision guard.Decision) models.PresentationContext {
	if decision.Action == guard.DenyRedirect {
		// Denied requests never render; callers that get here anyway see
		// the customer storefront.
		return models.ContextCustomer
	}
	switch route.RequiredRole {
	case models.RoleDriver:
		return models.ContextDriver
	case models.RoleAdmin:
		return models.ContextAdmin
	case models.RoleKitchen:
		return models.ContextKitchen
	case models.RoleManager:
		return models.ContextManager
	default:
		return models.ContextCustomer
	}
}
