package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextAccountID     = "account_id"
	ContextParticipantID = "participant_id"
	ContextRole          = "role"
)

// Middleware validates the bearer token and stores the caller's
// identity on the gin context.
func Middleware(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := svc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextParticipantID, claims.ParticipantID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller holds the given role.
// Must be placed after Middleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
