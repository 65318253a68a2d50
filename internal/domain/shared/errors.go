package shared

import "fmt"

// Error codes shared by every bounded context
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeConflict               = "CONFLICT"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeInvalidState           = "INVALID_STATE"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeNotEditable            = "NOT_EDITABLE"
	CodeNotCancellable         = "NOT_CANCELLABLE"
	CodeInvalidPrefix          = "INVALID_PREFIX"
	CodeLockNotObtained        = "LOCK_NOT_OBTAINED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so detailed
// errors still match the sentinels below with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error with an extra detail entry
func (e *DomainError) WithDetail(key, value string) *DomainError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a malformed value for field
func NewValidationError(field, message string) *DomainError {
	return NewDomainError(CodeValidation, message).WithDetail("field", field)
}

// NewNotFoundError reports a missing reference
func NewNotFoundError(resource, key string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, key)).
		WithDetail("resource", resource).
		WithDetail("key", key)
}

// NewConflictError reports a uniqueness collision on field
func NewConflictError(field, value, message string) *DomainError {
	return NewDomainError(CodeConflict, message).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewInvalidStateTransitionError reports an operation that the current status does not allow
func NewInvalidStateTransitionError(operation, status string) *DomainError {
	return NewDomainError(CodeInvalidStateTransition,
		fmt.Sprintf("Cannot %s transaction in %s status", operation, status)).
		WithDetail("operation", operation).
		WithDetail("status", status)
}

// NewNotEditableError reports a mutation attempted on a closed aggregate
func NewNotEditableError(status string) *DomainError {
	return NewDomainError(CodeNotEditable,
		fmt.Sprintf("Transaction in %s status cannot be edited", status)).
		WithDetail("status", status)
}

// NewNotCancellableError reports a delete or cancel attempted on a completed aggregate
func NewNotCancellableError(status string) *DomainError {
	return NewDomainError(CodeNotCancellable,
		fmt.Sprintf("Transaction in %s status cannot be cancelled or deleted", status)).
		WithDetail("status", status)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrConflict            = NewDomainError(CodeConflict, "Resource conflicts with existing data")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTransition   = NewDomainError(CodeInvalidStateTransition, "Status transition not allowed")
	ErrNotEditable         = NewDomainError(CodeNotEditable, "Resource cannot be edited")
	ErrNotCancellable      = NewDomainError(CodeNotCancellable, "Resource cannot be cancelled")
	ErrInvalidPrefix       = NewDomainError(CodeInvalidPrefix, "Invalid sequence prefix")
	ErrLockNotObtained     = NewDomainError(CodeLockNotObtained, "Resource is locked by another request")
)
