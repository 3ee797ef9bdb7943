package routes

import (
	"strings"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
)

// Table is the storefront's route descriptors, grouped the way the
// presentation layer mounts them. Exact paths first; the dashboard
// prefixes below cover their subpages.
var Table = []models.RouteDescriptor{
	// ── Public ─────────────────────────────────────────────────────
	{Path: "/"},
	{Path: "/login"},
	{Path: "/register"},
	{Path: "/menu"},
	{Path: "/about"},

	// ── Authenticated customer ─────────────────────────────────────
	{Path: "/cart", RequiresAuth: true},
	{Path: "/checkout", RequiresAuth: true},
	{Path: "/orders", RequiresAuth: true},
	{Path: "/reservations", RequiresAuth: true},
	{Path: "/profile", RequiresAuth: true},
	{Path: "/notifications", RequiresAuth: true},

	// ── Staff dashboards ───────────────────────────────────────────
	{Path: "/admin", RequiresAuth: true, RequiredRole: models.RoleAdmin},
	{Path: "/kitchen", RequiresAuth: true, RequiredRole: models.RoleKitchen},
	{Path: "/manager", RequiresAuth: true, RequiredRole: models.RoleManager},

	// ── Driver (independent credential track) ──────────────────────
	{Path: "/driver/login", DriverOwned: true},
	{Path: "/driver/register", DriverOwned: true},
	{Path: "/driver/dashboard", RequiredRole: models.RoleDriver, DriverOwned: true},
}

// prefixed routes cover their own subpages (/admin/orders, /driver/dashboard/deliveries, ...).
var prefixed = []string{"/admin", "/kitchen", "/manager", "/driver/dashboard"}

// Lookup resolves a request path to its descriptor. Unknown paths get a
// public descriptor for that path; the backend re-validates everything
// privileged anyway.
func Lookup(path string) models.RouteDescriptor {
	for _, r := range Table {
		if r.Path == path {
			return r
		}
	}
	for _, p := range prefixed {
		if strings.HasPrefix(path, p+"/") {
			return lookupExact(p)
		}
	}
	return models.RouteDescriptor{Path: path}
}

func lookupExact(path string) models.RouteDescriptor {
	for _, r := range Table {
		if r.Path == path {
			return r
		}
	}
	return models.RouteDescriptor{Path: path}
}
