package middleware

import (
	"errors"
	"net/http"

	"yamdb/internal/policy"

	"github.com/gin-gonic/gin"
)

// Require aborts the request unless gate accepts the caller. It runs before
// payload binding so callers without access never learn about validation
// rules; services apply the same gates again.
func Require(gate func(policy.Subject) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := gate(SubjectFrom(c))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, policy.ErrAuthenticationRequired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		}
	}
}

// RequireAdmin is a convenience function for admin-only routes
func RequireAdmin() gin.HandlerFunc {
	return Require(policy.AdminOnly)
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() gin.HandlerFunc {
	return Require(policy.Authenticated)
}
