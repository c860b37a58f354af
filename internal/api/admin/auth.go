// Package admin implements HTTP handlers for admin authentication.
package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/org-registry/org-registry/internal/auth"
	"github.com/org-registry/org-registry/internal/services"
)

// AuthHandlers handles authentication-related endpoints
type AuthHandlers struct {
	svc    *services.OrgService
	tokens *auth.TokenService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(svc *services.OrgService, tokens *auth.TokenService) *AuthHandlers {
	return &AuthHandlers{svc: svc, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// loginResponse is the token payload returned on successful login.
type loginResponse struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	AdminEmail     string `json:"admin_email"`
	OrganizationID string `json:"organization_id"`
}

// @Summary      Admin login
// @Description  Exchange admin email/password for a bearer token.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        body  body  loginRequest  true  "Credentials"
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  map[string]interface{}  "Incorrect email or password"
// @Router       /admin/login [post]
// LoginHandler authenticates an admin and issues an access token
// POST /admin/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		user, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				c.Header("WWW-Authenticate", "Bearer")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		token, err := h.tokens.Issue(user.Email, user.OrganizationName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue access token"})
			return
		}

		c.JSON(http.StatusOK, loginResponse{
			AccessToken:    token,
			TokenType:      "bearer",
			AdminEmail:     user.Email,
			OrganizationID: user.OrganizationID,
		})
	}
}
