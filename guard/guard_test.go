package guard

import (
	"testing"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(role models.Role) *models.Identity {
	return &models.Identity{ID: "u-1", Role: role}
}

func TestEvaluate(t *testing.T) {
	g := New(DefaultTargets)

	public := models.RouteDescriptor{Path: "/menu"}
	authed := models.RouteDescriptor{Path: "/orders", RequiresAuth: true}
	admin := models.RouteDescriptor{Path: "/admin", RequiresAuth: true, RequiredRole: models.RoleAdmin}
	kitchen := models.RouteDescriptor{Path: "/kitchen", RequiresAuth: true, RequiredRole: models.RoleKitchen}
	manager := models.RouteDescriptor{Path: "/manager", RequiresAuth: true, RequiredRole: models.RoleManager}
	driverDash := models.RouteDescriptor{Path: "/driver/dashboard", RequiredRole: models.RoleDriver, DriverOwned: true}
	driverLogin := models.RouteDescriptor{Path: "/driver/login", DriverOwned: true}

	cases := []struct {
		name  string
		route models.RouteDescriptor
		snap  session.Snapshot
		want  Decision
	}{
		{
			name:  "anonymous on public route",
			route: public,
			snap:  session.Snapshot{State: models.StateAnonymous},
			want:  Decision{Action: Allow},
		},
		{
			name:  "anonymous on authed route",
			route: authed,
			snap:  session.Snapshot{State: models.StateAnonymous},
			want:  Decision{Action: DenyRedirect, Redirect: "/login"},
		},
		{
			name:  "reload race defers on authed route",
			route: authed,
			snap:  session.Snapshot{State: models.StateRestoreFailed, HasStoredSnapshot: true},
			want:  Decision{Action: Defer},
		},
		{
			name:  "authenticated user on authed route",
			route: authed,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleUser)},
			want:  Decision{Action: Allow},
		},
		{
			name:  "authenticated admin on admin route",
			route: admin,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleAdmin)},
			want:  Decision{Action: Allow},
		},
		{
			name:  "plain user on admin route goes home",
			route: admin,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleUser)},
			want:  Decision{Action: DenyRedirect, Redirect: "/"},
		},
		{
			name:  "stored admin claim defers on admin route",
			route: admin,
			snap:  session.Snapshot{State: models.StateRestoreFailed, HasStoredSnapshot: true, StoredRole: models.RoleAdmin},
			want:  Decision{Action: Defer},
		},
		{
			// no in-memory identity, so the auth rule fires before the
			// admin rule ever sees the stored non-admin claim
			name:  "stored non-admin claim defers via the auth rule",
			route: admin,
			snap:  session.Snapshot{State: models.StateRestoreFailed, HasStoredSnapshot: true, StoredRole: models.RoleUser},
			want:  Decision{Action: Defer},
		},
		{
			name:  "authenticated non-admin with stored non-admin claim goes home",
			route: admin,
			snap: session.Snapshot{
				State:             models.StateAuthenticated,
				Identity:          identity(models.RoleUser),
				HasStoredSnapshot: true,
				StoredRole:        models.RoleUser,
			},
			want: Decision{Action: DenyRedirect, Redirect: "/"},
		},
		{
			name:  "kitchen staff on kitchen route",
			route: kitchen,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleKitchen)},
			want:  Decision{Action: Allow},
		},
		{
			name:  "customer on kitchen route goes home",
			route: kitchen,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleUser)},
			want:  Decision{Action: DenyRedirect, Redirect: "/"},
		},
		{
			name:  "stored kitchen claim gets no grace on kitchen route",
			route: kitchen,
			snap:  session.Snapshot{State: models.StateRestoredUnverified, HasStoredSnapshot: true, StoredRole: models.RoleKitchen},
			want:  Decision{Action: Defer}, // rule 3 defers before the staff rule runs
		},
		{
			name:  "manager on manager route",
			route: manager,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleManager)},
			want:  Decision{Action: Allow},
		},
		{
			name:  "admin on manager route goes home",
			route: manager,
			snap:  session.Snapshot{State: models.StateAuthenticated, Identity: identity(models.RoleAdmin)},
			want:  Decision{Action: DenyRedirect, Redirect: "/"},
		},
		{
			name:  "no driver on driver route",
			route: driverDash,
			snap:  session.Snapshot{State: models.StateAnonymous},
			want:  Decision{Action: DenyRedirect, Redirect: "/driver/login"},
		},
		{
			name:  "driver on own dashboard",
			route: driverDash,
			snap:  session.Snapshot{DriverActive: true},
			want:  Decision{Action: Allow},
		},
		{
			name:  "driver on driver login route",
			route: driverLogin,
			snap:  session.Snapshot{DriverActive: true},
			want:  Decision{Action: Allow},
		},
		{
			name:  "driver sandboxed away from the storefront",
			route: public,
			snap:  session.Snapshot{DriverActive: true},
			want:  Decision{Action: DenyRedirect, Redirect: "/driver/dashboard"},
		},
		{
			name:  "driver sandbox beats a co-present admin identity",
			route: admin,
			snap:  session.Snapshot{DriverActive: true, Identity: identity(models.RoleAdmin)},
			want:  Decision{Action: DenyRedirect, Redirect: "/driver/dashboard"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Evaluate(tc.route, tc.snap)
			require.Equal(t, tc.want, got)

			// idempotence: same input, same decision, no hidden mutation
			assert.Equal(t, got, g.Evaluate(tc.route, tc.snap))
		})
	}
}

func TestGuardNeverPanicsOnZeroInput(t *testing.T) {
	g := New(DefaultTargets)
	require.NotPanics(t, func() {
		g.Evaluate(models.RouteDescriptor{}, session.Snapshot{})
	})
}
