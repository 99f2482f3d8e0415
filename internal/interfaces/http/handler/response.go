package handler

import "github.com/shopflux/storefront/internal/interfaces/http/dto"

// Envelope types below only feed the generated API docs; handlers write
// dto.Response directly.

// APIResponse is the success envelope around a single payload.
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// PageResponse is the success envelope of a paginated listing.
type PageResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
