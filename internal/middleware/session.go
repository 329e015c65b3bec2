package middleware

import (
	"net/http"

	"task-tracker/backend/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	// ContextIdentity holds a *session.Identity when a valid session cookie
	// accompanied the request.
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
)

// LoadSession resolves the session cookie into an identity on every request.
// A missing or expired cookie is not an error here; route guards decide what
// an absent identity means.
func LoadSession(store *session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if identity, err := store.Get(token); err == nil {
				c.Set(ContextIdentity, identity)
				c.Set(ContextUserID, identity.UserID)
			}
		}
		c.Next()
	}
}

// RequirePage redirects unauthenticated requests to the login page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity for this request, if any.
func CurrentIdentity(c *gin.Context) (*session.Identity, bool) {
	value, exists := c.Get(ContextIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*session.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// CurrentUserID returns the authenticated user's ID for this request, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}
