package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/shopflux/storefront/internal/application/identity"
)

// ProfileReader loads the signed-in user's profile
type ProfileReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*identityapp.ProfileResponse, error)
}

// ProfileHandler serves the current user's account data
type ProfileHandler struct {
	BaseHandler
	profiles ProfileReader
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles ProfileReader) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get godoc
// @ID           getProfile
// @Summary      Get my profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.ProfileResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, profile)
}
