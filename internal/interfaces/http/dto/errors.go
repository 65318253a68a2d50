package dto

import (
	"net/http"

	"github.com/erp/purchasing/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation    = "ERR_VALIDATION"
	ErrCodeInvalidPrefix = "ERR_INVALID_PREFIX"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeLockNotObtained     = "ERR_LOCK_NOT_OBTAINED"
)

// Business rule error codes
const (
	ErrCodeInvalidState           = "ERR_INVALID_STATE"
	ErrCodeInvalidStateTransition = "ERR_INVALID_STATE_TRANSITION"
	ErrCodeNotEditable            = "ERR_NOT_EDITABLE"
	ErrCodeNotCancellable         = "ERR_NOT_CANCELLABLE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeInvalidPrefix: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLockNotObtained:     http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidStateTransition: http.StatusUnprocessableEntity,
	ErrCodeNotEditable:            http.StatusUnprocessableEntity,
	ErrCodeNotCancellable:         http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeValidation:             ErrCodeValidation,
	shared.CodeInvalidInput:           ErrCodeInvalidInput,
	shared.CodeNotFound:               ErrCodeNotFound,
	shared.CodeAlreadyExists:          ErrCodeAlreadyExists,
	shared.CodeConflict:               ErrCodeConflict,
	shared.CodeConcurrencyConflict:    ErrCodeConcurrencyConflict,
	shared.CodeInvalidState:           ErrCodeInvalidState,
	shared.CodeInvalidStateTransition: ErrCodeInvalidStateTransition,
	shared.CodeNotEditable:            ErrCodeNotEditable,
	shared.CodeNotCancellable:         ErrCodeNotCancellable,
	shared.CodeInvalidPrefix:          ErrCodeInvalidPrefix,
	shared.CodeLockNotObtained:        ErrCodeLockNotObtained,
	"BAD_REQUEST":                     ErrCodeBadRequest,
	"INTERNAL_ERROR":                  ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, and unknown codes, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
