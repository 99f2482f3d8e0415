package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	newsletterapp "github.com/shopflux/storefront/internal/application/newsletter"
)

// NewsletterSubscriber signs addresses up for the newsletter
type NewsletterSubscriber interface {
	Subscribe(ctx context.Context, req newsletterapp.SubscribeRequest) (*newsletterapp.SubscribeResponse, error)
}

// NewsletterHandler handles newsletter sign-ups
type NewsletterHandler struct {
	BaseHandler
	subscriptions NewsletterSubscriber
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(subscriptions NewsletterSubscriber) *NewsletterHandler {
	return &NewsletterHandler{subscriptions: subscriptions}
}

// Subscribe godoc
// @ID           subscribeNewsletter
// @Summary      Subscribe to the newsletter
// @Description  Signs an address up. Repeating the sign-up answers 200 with already_subscribed set.
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Param        request body newsletterapp.SubscribeRequest true "Email address"
// @Success      200 {object} APIResponse[newsletterapp.SubscribeResponse]
// @Success      201 {object} APIResponse[newsletterapp.SubscribeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /newsletter/subscriptions [post]
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req newsletterapp.SubscribeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.subscriptions.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if resp.AlreadySubscribed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}
