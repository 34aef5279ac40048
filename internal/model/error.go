package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code,omitempty"`
	Details       []string `json:"details,omitempty"`
	CorrelationID string   `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeFileType    = "INVALID_FILE_TYPE"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// ErrorKind classifies domain errors for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
)

// DomainError is a business-rule violation raised by the service layer.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []string
	cause   error
}

func (e *DomainError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Details)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string, details ...string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(details ...string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, "invalid data", details...)
}

// NewConflictError reports a unique key collision or a blocked deletion.
func NewConflictError(message string, details ...string) *DomainError {
	return NewDomainError(KindConflict, ErrCodeConflict, message, details...)
}

// NewNotFoundError reports an unknown id or code.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeNotFound, message)
}

// ErrInsufficientStock is wrapped by the validation error returned when an
// order line asks for more than the product has in stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// NewInsufficientStockError names the product that cannot cover the
// requested quantity.
func NewInsufficientStockError(productCode string) *DomainError {
	err := NewValidationError(fmt.Sprintf("insufficient stock for product '%s'", productCode))
	err.cause = ErrInsufficientStock
	return err
}

// AsDomainError unwraps err into a *DomainError when possible.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}
