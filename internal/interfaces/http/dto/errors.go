package dto

import (
	"net/http"
	"strings"
)

// API error codes, as sent in ErrorInfo.Code.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeInvalidCategory    = "ERR_VALIDATION_CATEGORY"
	ErrCodeInvalidPriceRange  = "ERR_VALIDATION_PRICE_RANGE"
	ErrCodeInvalidQuantity    = "ERR_VALIDATION_QUANTITY"
	ErrCodeInvalidEmail       = "ERR_VALIDATION_EMAIL"
	ErrCodeInvalidOrderStatus = "ERR_VALIDATION_ORDER_STATUS"
	ErrCodeInvalidRating      = "ERR_VALIDATION_RATING"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeQuantityLimit     = "ERR_QUANTITY_LIMIT"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// codeTable gives each API code its status and the domain error codes
// that translate to it.
var codeTable = []struct {
	code   string
	status int
	domain []string
}{
	{ErrCodeUnknown, http.StatusInternalServerError, nil},
	{ErrCodeInternal, http.StatusInternalServerError, []string{"INTERNAL_ERROR"}},

	{ErrCodeBadRequest, http.StatusBadRequest, []string{"BAD_REQUEST", "INVALID_PRODUCT"}},
	{ErrCodeInvalidJSON, http.StatusBadRequest, nil},
	{ErrCodeValidation, http.StatusBadRequest, []string{"VALIDATION_ERROR"}},
	{ErrCodeInvalidCategory, http.StatusBadRequest, []string{"INVALID_CATEGORY"}},
	{ErrCodeInvalidPriceRange, http.StatusBadRequest, []string{"INVALID_PRICE_RANGE"}},
	{ErrCodeInvalidQuantity, http.StatusBadRequest, []string{"INVALID_QUANTITY"}},
	{ErrCodeInvalidEmail, http.StatusBadRequest, []string{"INVALID_EMAIL"}},
	{ErrCodeInvalidOrderStatus, http.StatusBadRequest, []string{"INVALID_STATUS"}},
	{ErrCodeInvalidRating, http.StatusBadRequest, []string{"INVALID_RATING"}},
	{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge, []string{"REQUEST_TOO_LARGE"}},

	{ErrCodeUnauthorized, http.StatusUnauthorized, []string{"UNAUTHORIZED"}},
	{ErrCodeForbidden, http.StatusForbidden, []string{"FORBIDDEN"}},
	{ErrCodeTokenExpired, http.StatusUnauthorized, []string{"TOKEN_EXPIRED"}},
	{ErrCodeTokenInvalid, http.StatusUnauthorized, []string{"INVALID_TOKEN"}},
	{ErrCodeTokenRevoked, http.StatusUnauthorized, []string{"TOKEN_REVOKED"}},

	{ErrCodeNotFound, http.StatusNotFound, []string{"NOT_FOUND"}},
	{ErrCodeAlreadyExists, http.StatusConflict, []string{"ALREADY_EXISTS"}},

	{ErrCodeInsufficientStock, http.StatusUnprocessableEntity, []string{"INSUFFICIENT_STOCK"}},
	{ErrCodeQuantityLimit, http.StatusUnprocessableEntity, []string{"QUANTITY_LIMIT"}},

	{ErrCodeRateLimited, http.StatusTooManyRequests, []string{"RATE_LIMIT_EXCEEDED"}},
}

var (
	statusByCode = map[string]int{}
	codeByDomain = map[string]string{}
)

func init() {
	for _, row := range codeTable {
		statusByCode[row.code] = row.status
		for _, d := range row.domain {
			codeByDomain[d] = row.code
		}
	}
}

// GetHTTPStatus is 500 for codes it does not know.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode translates a domain error code to its API code. Any
// other INVALID_* code is a validation failure; everything else passes
// through unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := codeByDomain[code]; ok {
		return api
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return code
}
