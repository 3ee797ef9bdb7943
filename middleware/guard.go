package middleware

import (
	"net/http"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/dispatch"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/guard"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/routes"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/session"

	"github.com/gin-gonic/gin"
)

// Context keys injected for downstream handlers.
const (
	ContextKey  = "presentationContext"
	IdentityKey = "identity"
	DeferredKey = "deferred"
)

// Guarded evaluates the authorization guard for every request and either
// redirects or injects the selected presentation context. A DEFER renders
// like an ALLOW but is flagged so templates can show last-known-good data
// while reconciliation finishes; the backend still re-validates every
// privileged action.
func Guarded(g *guard.Guard, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routes.Lookup(c.Request.URL.Path)
		snap := sessions.Snapshot()
		decision := g.Evaluate(route, snap)

		if decision.Action == guard.DenyRedirect {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		c.Set(ContextKey, dispatch.Select(route, decision))
		c.Set(DeferredKey, decision.Action == guard.Defer)
		if snap.Identity != nil {
			c.Set(IdentityKey, snap.Identity)
		}
		c.Next()
	}
}

// PresentationContext extracts the dispatched context for the request.
func PresentationContext(c *gin.Context) models.PresentationContext {
	if v, ok := c.Get(ContextKey); ok {
		return v.(models.PresentationContext)
	}
	return models.ContextCustomer
}

// Identity extracts the caller's identity, nil when anonymous or deferred.
func Identity(c *gin.Context) *models.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		return v.(*models.Identity)
	}
	return nil
}

// Deferred reports whether this request rendered on unverified state.
func Deferred(c *gin.Context) bool {
	if v, ok := c.Get(DeferredKey); ok {
		return v.(bool)
	}
	return false
}
