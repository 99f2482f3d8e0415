package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidCategory, http.StatusBadRequest},
		{ErrCodeInvalidPriceRange, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeQuantityLimit, http.StatusUnprocessableEntity},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"QUANTITY_LIMIT", ErrCodeQuantityLimit},
		{"INVALID_CATEGORY", ErrCodeInvalidCategory},
		{"INVALID_EMAIL", ErrCodeInvalidEmail},
		{"INVALID_STATUS", ErrCodeInvalidOrderStatus},
		{"TOKEN_REVOKED", ErrCodeTokenRevoked},
		{"INVALID_PRODUCT", ErrCodeBadRequest},
		{"INVALID_NAME", ErrCodeValidation},
		{"INVALID_PRICE", ErrCodeValidation},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestCodeTable_NoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, row := range codeTable {
		assert.False(t, seen[row.code], "%s listed twice", row.code)
		seen[row.code] = true
		for _, d := range row.domain {
			assert.False(t, seen[d], "%s listed twice", d)
			seen[d] = true
		}
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	exact := NewSuccessResponseWithMeta([]string{"a"}, 40, 2, 20)
	assert.Equal(t, 2, exact.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta([]string{}, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)

	plain, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Product not found"))
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "request_id")
	assert.NotContains(t, string(plain), "details")
}
