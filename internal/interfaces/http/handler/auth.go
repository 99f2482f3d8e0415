package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/infrastructure/auth"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// TokenRevoker revokes a validated access token
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler handles session endpoints. Sign-in happens at the identity
// provider; the storefront only ends sessions.
type AuthHandler struct {
	BaseHandler
	tokens TokenRevoker
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokens TokenRevoker) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Logout godoc
// @ID           logout
// @Summary      Sign out
// @Description  Revokes the presented bearer token until it expires
// @Tags         auth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		h.Unauthorized(c, "Sign in to continue")
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
		logger.FromGin(c).Error("Failed to revoke token",
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		h.InternalError(c, "Could not sign out, please try again")
		return
	}

	logger.FromGin(c).Info("User signed out", zap.String("user_id", claims.UserID))
	h.NoContent(c)
}
