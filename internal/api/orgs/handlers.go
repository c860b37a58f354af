// Package orgs implements HTTP handlers for the organization lifecycle:
// registration, lookup, rename/credential updates, and deletion.
package orgs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/org-registry/org-registry/internal/db/models"
	"github.com/org-registry/org-registry/internal/middleware"
	"github.com/org-registry/org-registry/internal/services"
)

// Handlers handles organization lifecycle endpoints
type Handlers struct {
	svc *services.OrgService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *services.OrgService) *Handlers {
	return &Handlers{svc: svc}
}

// createRequest is the registration payload. All three fields are required.
type createRequest struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
}

// updateRequest carries only the fields being changed; absent fields are left
// untouched. The target organization is always the caller's own, resolved
// from the bearer token.
type updateRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email" binding:"omitempty,email"`
	Password         string `json:"password"`
}

// orgResponse is the wire shape of an organization registry record.
type orgResponse struct {
	OrganizationName string `json:"organization_name"`
	CollectionName   string `json:"collection_name"`
	AdminEmail       string `json:"admin_email"`
}

func toResponse(org *models.Organization) orgResponse {
	return orgResponse{
		OrganizationName: org.Name,
		CollectionName:   org.CollectionName,
		AdminEmail:       org.AdminEmail,
	}
}

// respondError translates service-layer sentinel errors into HTTP statuses.
// Unrecognized errors become opaque 500s; the underlying cause is logged by
// the service layer, never leaked to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrgExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Organization already exists"})
	case errors.Is(err, services.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Admin email already exists"})
	case errors.Is(err, services.ErrOrgNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this organization"})
	case errors.Is(err, services.ErrRenameFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename collection"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// @Summary      Register organization
// @Description  Create a new organization with its backing collection and admin account.
// @Tags         Organizations
// @Accept       json
// @Produce      json
// @Param        body  body  createRequest  true  "Registration payload"
// @Success      201  {object}  orgResponse
// @Failure      400  {object}  map[string]interface{}  "Malformed payload"
// @Failure      409  {object}  map[string]interface{}  "Name or email already taken"
// @Router       /org/create [post]
// CreateHandler registers a new organization
// POST /org/create
func (h *Handlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		org, err := h.svc.Create(c.Request.Context(), req.OrganizationName, req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, toResponse(org))
	}
}

// @Summary      Get organization
// @Description  Look up an organization's registry record by name.
// @Tags         Organizations
// @Produce      json
// @Param        organization_name  query  string  true  "Organization name"
// @Success      200  {object}  orgResponse
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /org/get [get]
// GetHandler looks up an organization by name
// GET /org/get?organization_name=
func (h *Handlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("organization_name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organization_name query parameter is required"})
			return
		}

		org, err := h.svc.Get(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, toResponse(org))
	}
}

// @Summary      Update organization
// @Description  Rename the caller's organization and/or rotate its admin credentials.
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  updateRequest  true  "Fields to change; absent fields are left unchanged"
// @Success      200  {object}  orgResponse
// @Failure      401  {object}  map[string]interface{}  "Missing or invalid token"
// @Failure      409  {object}  map[string]interface{}  "New name or email already taken"
// @Failure      500  {object}  map[string]interface{}  "Collection rename failed"
// @Router       /org/update [put]
// UpdateHandler updates the authenticated caller's organization
// PUT /org/update
func (h *Handlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		org, err := h.svc.Update(c.Request.Context(), actor, services.UpdateParams{
			Name:     req.OrganizationName,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, toResponse(org))
	}
}

// @Summary      Delete organization
// @Description  Delete the named organization, its backing collection, and its admin accounts.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Param        organization_name  query  string  true  "Organization name"
// @Success      200  {object}  map[string]interface{}  "Deletion confirmation"
// @Failure      403  {object}  map[string]interface{}  "Caller belongs to a different organization"
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /org/delete [delete]
// DeleteHandler deletes the authenticated caller's organization
// DELETE /org/delete?organization_name=
func (h *Handlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		name := c.Query("organization_name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organization_name query parameter is required"})
			return
		}

		if err := h.svc.Delete(c.Request.Context(), actor, name); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
	}
}
