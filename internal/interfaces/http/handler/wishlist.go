package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/application/shopping"
)

// WishlistManager is the wishlist use case surface used by WishlistHandler
type WishlistManager interface {
	List(ctx context.Context, userID uuid.UUID) (*shopping.WishlistResponse, error)
	Add(ctx context.Context, userID uuid.UUID, req shopping.AddToWishlistRequest) (bool, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

// WishlistAddResponse reports the outcome of saving a product
// @name HandlerWishlistAddResponse
type WishlistAddResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Added     bool      `json:"added"`
}

// WishlistHandler serves the signed-in user's wishlist
type WishlistHandler struct {
	BaseHandler
	wishlist WishlistManager
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlist WishlistManager) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// List godoc
// @ID           getWishlist
// @Summary      Get wishlist
// @Description  Saved products, newest first
// @Tags         wishlist
// @Produce      json
// @Success      200 {object} APIResponse[shopping.WishlistResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	list, err := h.wishlist.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, list)
}

// Add godoc
// @ID           addWishlistItem
// @Summary      Save to wishlist
// @Description  Saves an active product. Saving it again is a no-op answered with 200.
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        request body shopping.AddToWishlistRequest true "Product to save"
// @Success      200 {object} APIResponse[WishlistAddResponse]
// @Success      201 {object} APIResponse[WishlistAddResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist/items [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req shopping.AddToWishlistRequest
	if !h.bindJSON(c, &req) {
		return
	}

	added, err := h.wishlist.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := WishlistAddResponse{ProductID: req.ProductID, Added: added}
	if added {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// Remove godoc
// @ID           removeWishlistItem
// @Summary      Remove from wishlist
// @Tags         wishlist
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist/items/{product_id} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	productID, ok := h.parseUUIDParam(c, "product_id", "product ID")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
