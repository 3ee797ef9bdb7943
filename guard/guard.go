package guard

import (
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/session"
)

// Action is the guard's three-valued outcome
type Action string

const (
	// Allow: render the route.
	Allow Action = "ALLOW"
	// DenyRedirect: do not render; send the caller to Decision.Redirect.
	DenyRedirect Action = "DENY_REDIRECT"
	// Defer: render optimistically on last-known-good data. Used during
	// the window after a reload where a persisted identity snapshot has
	// not yet been validated against the server. Every privileged write
	// is still re-validated server-side; Defer is a UX decision, not an
	// enforcement point.
	Defer Action = "DEFER"
)

// Decision is the guard's answer for one route request.
type Decision struct {
	Action   Action
	Redirect string
}

// Targets are the redirect destinations the guard can send a caller to.
type Targets struct {
	Login           string
	Home            string
	DriverLogin     string
	DriverDashboard string
}

// DefaultTargets matches the storefront's route table.
var DefaultTargets = Targets{
	Login:           "/login",
	Home:            "/",
	DriverLogin:     "/driver/login",
	DriverDashboard: "/driver/dashboard",
}

// Guard decides whether a route may render for the current session. It
// never errors: every input resolves to exactly one decision, and
// evaluation reads only the snapshot it is handed, so identical inputs
// always produce identical decisions.
type Guard struct {
	targets Targets
}

// New creates a guard with the given redirect targets.
func New(targets Targets) *Guard {
	return &Guard{targets: targets}
}

// rule is one step of the precedence chain. A nil decision means the rule
// does not apply and evaluation falls through to the next one.
type rule func(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision

// precedence is the authoritative evaluation order; first match wins.
var precedence = []rule{
	driverSandbox,
	driverRequired,
	authRequired,
	adminRequired,
	staffRequired,
}

// Evaluate runs the precedence chain for one route request.
func (g *Guard) Evaluate(route models.RouteDescriptor, snap session.Snapshot) Decision {
	for _, r := range precedence {
		if d := r(g, route, snap); d != nil {
			return *d
		}
	}
	return Decision{Action: Allow}
}

// driverSandbox: an active driver persona is confined to the driver's own
// routes, regardless of any customer/staff identity also present.
func driverSandbox(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision {
	if snap.DriverActive && !route.DriverOwned {
		return &Decision{Action: DenyRedirect, Redirect: g.targets.DriverDashboard}
	}
	return nil
}

// driverRequired: driver routes need an active driver session.
func driverRequired(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision {
	if route.RequiresDriver() && !snap.DriverActive {
		return &Decision{Action: DenyRedirect, Redirect: g.targets.DriverLogin}
	}
	return nil
}

// authRequired: routes needing any authenticated identity. A persisted
// snapshot inside its grace window defers instead of bouncing a
// legitimately authenticated user to the login page on every refresh.
func authRequired(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision {
	if !route.RequiresAuth || snap.Identity != nil {
		return nil
	}
	if snap.HasStoredSnapshot {
		return &Decision{Action: Defer}
	}
	return &Decision{Action: DenyRedirect, Redirect: g.targets.Login}
}

// adminRequired: admin routes tolerate the same reload race when the
// stored snapshot claims ADMIN.
func adminRequired(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision {
	if route.RequiredRole != models.RoleAdmin {
		return nil
	}
	if snap.Identity != nil && snap.Identity.Role == models.RoleAdmin {
		return nil
	}
	if snap.HasStoredSnapshot && snap.StoredRole == models.RoleAdmin {
		return &Decision{Action: Defer}
	}
	return &Decision{Action: DenyRedirect, Redirect: g.targets.Home}
}

// staffRequired: kitchen and manager routes get no grace window; a wrong
// or unknown role goes home.
func staffRequired(g *Guard, route models.RouteDescriptor, snap session.Snapshot) *Decision {
	if route.RequiredRole != models.RoleKitchen && route.RequiredRole != models.RoleManager {
		return nil
	}
	if resolvedRole(snap) == route.RequiredRole {
		return nil
	}
	return &Decision{Action: DenyRedirect, Redirect: g.targets.Home}
}

// resolvedRole is the best-available role claim: in-memory identity when
// present, otherwise the unverified stored snapshot.
func resolvedRole(snap session.Snapshot) models.Role {
	if snap.Identity != nil {
		return snap.Identity.Role
	}
	if snap.HasStoredSnapshot {
		return snap.StoredRole
	}
	return ""
}
