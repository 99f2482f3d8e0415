package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// viewerID returns the signed-in user's id, or uuid.Nil for anonymous viewers
func viewerID(c *gin.Context) uuid.UUID {
	id, _ := middleware.ViewerID(c)
	return id
}

// requireUserID returns the signed-in user's id and writes a 401 when there is none.
// Routes mounted behind RequireAuth never hit the 401 path.
func (h *BaseHandler) requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ViewerID(c)
	if !ok {
		h.Unauthorized(c, "Sign in to continue")
	}
	return id, ok
}

// parseUUIDParam reads a UUID path parameter and writes a 400 when it is malformed
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body and writes the validation response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds the query string and writes the validation response on failure
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success writes data with a 200 envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Page writes one page of a listing together with its pagination meta.
func (h *BaseHandler) Page(c *gin.Context, items any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(items, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// fail writes the error envelope; the status is derived from code.
func (h *BaseHandler) fail(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.fail(c, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.fail(c, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.fail(c, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses.
// Anything that is not a DomainError is logged and answered with a 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.fail(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	logger.FromGin(c).Error("Request failed", zap.Error(err))
	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}
