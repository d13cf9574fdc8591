package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code and message, so wrapped
// copies created with NewDomainErrorWithCause still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query text is required")
	ErrKnowledgeInvalid     = NewDomainError(ErrCodeValidation, "knowledge data is invalid")
	ErrInvalidReference     = NewDomainError(ErrCodeValidation, "invalid reference time")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrChunkNotFound = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrEntryNotFound = NewDomainError(ErrCodeNotFound, "knowledge entry not found")
)

// Corpus errors
var (
	ErrIndexMismatch    = NewDomainError(ErrCodeInternalError, "vector index and chunk metadata are out of step")
	ErrIndexUnavailable = NewDomainError(ErrCodeUnavailable, "document index unavailable")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrRateLimited   = NewDomainError(ErrCodeRateLimited, "too many requests")
)
