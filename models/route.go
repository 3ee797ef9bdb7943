package models

// PresentationContext selects which of the five front-ends renders an
// authorized request.
type PresentationContext string

const (
	ContextCustomer PresentationContext = "customer"
	ContextAdmin    PresentationContext = "admin"
	ContextDriver   PresentationContext = "driver"
	ContextKitchen  PresentationContext = "kitchen"
	ContextManager  PresentationContext = "manager"
)

// RouteDescriptor describes the authorization requirements of one route.
type RouteDescriptor struct {
	Path         string
	RequiresAuth bool
	// RequiredRole is empty for routes any authenticated user may visit.
	RequiredRole Role
	// DriverOwned marks the driver's own login/register/dashboard routes,
	// the only routes an active driver session is not redirected away from.
	DriverOwned bool
}

// RequiresDriver reports whether the route is reachable only with an
// active driver session.
func (r RouteDescriptor) RequiresDriver() bool {
	return r.RequiredRole == RoleDriver
}
