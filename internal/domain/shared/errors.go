package shared

// DomainError is a failure the shopper can act on. Code is stable and
// mapped onto an HTTP status by the transport layer; Message is shown
// as is.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is matches on Code, so a reworded error still satisfies errors.Is
// against the sentinel it was derived from.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	return ok && other.Code == e.Code
}

var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Sign in to continue")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
