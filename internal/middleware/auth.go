// Package middleware provides Gin HTTP middleware for authentication, request
// identification, rate limiting, security headers, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	RequestID → Metrics → CORS → SecurityHeaders → RateLimit → Auth → Handler
//
// Rate limiting runs before auth so brute-force login attempts are rejected
// before any bcrypt or database work. Auth populates the admin identity in the
// request context; handlers read it from there.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/org-registry/org-registry/internal/auth"
	"github.com/org-registry/org-registry/internal/db/models"
	"github.com/org-registry/org-registry/internal/db/repositories"
)

const (
	// CurrentUserKey is the gin.Context key under which the resolved admin
	// account is stored for handlers.
	CurrentUserKey = "current_user"
)

// AuthMiddleware resolves the bearer token on each protected request to an
// admin account. A malformed, mis-signed, or expired token is rejected, as is
// a valid token whose email claim no longer resolves to an existing account,
// which covers accounts deleted after the token was issued.
func AuthMiddleware(tokens *auth.TokenService, userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := tokens.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Could not validate credentials",
			})
			return
		}

		user, err := userRepo.GetByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Could not validate credentials",
			})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the admin account resolved by AuthMiddleware, or nil
// when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
