package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/policy"

	"github.com/gin-gonic/gin"
)

// SubjectKey is where Authenticate stores the caller's policy.Subject.
const SubjectKey = "subject"

// TokenParser validates an access token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate resolves the Authorization header into a policy.Subject.
// Requests without the header continue as anonymous; a header that is
// malformed, carries a bad token, or names an unknown or inactive account is
// rejected with 401. A lookup that fails for any other reason is a server
// error, not a credential problem. The role comes from storage, not from the
// token, so role changes apply immediately.
func Authenticate(parser TokenParser, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(SubjectKey, policy.Anonymous())
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := parser.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
			return
		case errors.Is(err, context.DeadlineExceeded):
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
			return
		case err != nil:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		case !user.IsActive:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
			return
		}

		c.Set(SubjectKey, policy.FromUser(user))
		c.Next()
	}
}

// SubjectFrom returns the caller set by Authenticate, or an anonymous subject.
func SubjectFrom(c *gin.Context) policy.Subject {
	if v, ok := c.Get(SubjectKey); ok {
		if s, ok := v.(policy.Subject); ok {
			return s
		}
	}
	return policy.Anonymous()
}
