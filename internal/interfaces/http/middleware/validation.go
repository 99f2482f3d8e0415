package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
)

var validatorOnce sync.Once

// SetupValidator teaches gin's validator to report fields by their json
// (or form) name and registers the "category" tag. Safe to call repeatedly.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return catalog.Category(fl.Field().String()).IsValid()
		})
	})
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return ""
}

// HandleValidationError answers a failed bind. Oversized and undecodable
// bodies get their own codes; everything else is reported per field.
func HandleValidationError(c *gin.Context, err error) {
	var (
		tooLarge *http.MaxBytesError
		syntax   *json.SyntaxError
		mistyped *json.UnmarshalTypeError
		invalid  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &tooLarge):
		abort(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF):
		abort(c, dto.ErrCodeInvalidJSON, "Request body is required")
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		abort(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.As(err, &mistyped):
		validationFailed(c, dto.ValidationDetail{Field: mistyped.Field, Message: "Must be a " + mistyped.Type.String()})
	case errors.As(err, &invalid):
		details := make([]dto.ValidationDetail, 0, len(invalid))
		for _, fe := range invalid {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		validationFailed(c, details...)
	default:
		validationFailed(c)
	}
}

func validationFailed(c *gin.Context, details ...dto.ValidationDetail) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"category": "Unknown product category",
	"oneof":    "Must be one of: %s",
	"gte":      "Must be greater than or equal to %s",
	"lte":      "Must be less than or equal to %s",
}

func fieldMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "min", "max":
		bound := "least"
		if tag == "max" {
			bound = "most"
		}
		msg := "Must be at " + bound + " " + fe.Param()
		if fe.Kind() == reflect.String {
			msg += " characters"
		}
		return msg
	default:
		tmpl, ok := tagMessages[tag]
		if !ok {
			return "Invalid value"
		}
		if strings.Contains(tmpl, "%s") {
			return strings.Replace(tmpl, "%s", fe.Param(), 1)
		}
		return tmpl
	}
}
