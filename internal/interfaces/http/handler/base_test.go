package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/auth"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestRouter returns an engine whose requests are signed in as userID;
// uuid.Nil leaves them anonymous
func newTestRouter(userID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	if userID != uuid.Nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID.String())
			c.Set(middleware.ClaimsKey, &auth.Claims{UserID: userID.String()})
			c.Next()
		})
	}
	return router
}

func doJSON(router *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, code, resp.Error.Code)
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerPage(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Page(c, []string{"lamp", "novel"}, 101, 1, 10)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(101), resp.Meta.Total)
	assert.Equal(t, 11, resp.Meta.TotalPages)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.DELETE("/test", h.NoContent)

	w := doJSON(router, http.MethodDelete, "/test", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "who") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "oops") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"fail derives status", func(h *BaseHandler, c *gin.Context) { h.fail(c, dto.ErrCodeQuantityLimit, "too many") }, http.StatusUnprocessableEntity, dto.ErrCodeQuantityLimit},
		{"fail on rate limit", func(h *BaseHandler, c *gin.Context) { h.fail(c, dto.ErrCodeRateLimited, "slow down") }, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-"+tt.name)

			tt.method(&BaseHandler{}, c)

			assertErrorCode(t, w, tt.expectedCode, tt.expectedErr)
			assert.Equal(t, "req-"+tt.name, decodeResponse(t, w).Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"quantity limit", shared.NewDomainError("QUANTITY_LIMIT", "max 99"), http.StatusUnprocessableEntity, dto.ErrCodeQuantityLimit},
		{"invalid category", shared.NewDomainError("INVALID_CATEGORY", "unknown"), http.StatusBadRequest, dto.ErrCodeInvalidCategory},
		{"invalid email", shared.NewDomainError("INVALID_EMAIL", "bad"), http.StatusBadRequest, dto.ErrCodeInvalidEmail},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"unmapped code", shared.NewDomainError("SOMETHING_ELSE", "x"), http.StatusInternalServerError, "SOMETHING_ELSE"},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			(&BaseHandler{}).HandleDomainError(c, tt.err)

			assertErrorCode(t, w, tt.expectedCode, tt.expectedErr)
		})
	}
}

func TestBaseHandlerHandleDomainError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleDomainError(c, fmt.Errorf("pq: connection refused"))

	resp := decodeResponse(t, w)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	assert.Len(t, c.Errors, 1)
}

func TestBaseHandlerParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.parseUUIDParam(c, "id", "item ID")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := doJSON(router, http.MethodGet, "/items/"+id.String(), nil)
	assert.Equal(t, id.String(), w.Body.String())

	w = doJSON(router, http.MethodGet, "/items/42", nil)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	assert.Equal(t, "Invalid item ID format", decodeResponse(t, w).Error.Message)
}

func TestBaseHandlerRequireUserID(t *testing.T) {
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		id, ok := h.requireUserID(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	}

	userID := uuid.New()
	signedIn := newTestRouter(userID)
	signedIn.GET("/me", handler)
	w := doJSON(signedIn, http.MethodGet, "/me", nil)
	assert.Equal(t, userID.String(), w.Body.String())

	anonymous := newTestRouter(uuid.Nil)
	anonymous.GET("/me", handler)
	w = doJSON(anonymous, http.MethodGet, "/me", nil)
	assertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}
