package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidPrefix, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeLockNotObtained, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidStateTransition, http.StatusUnprocessableEntity},
		{ErrCodeNotEditable, http.StatusUnprocessableEntity},
		{ErrCodeNotCancellable, http.StatusUnprocessableEntity},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
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
		{shared.CodeNotFound, ErrCodeNotFound},
		{shared.CodeValidation, ErrCodeValidation},
		{shared.CodeInvalidStateTransition, ErrCodeInvalidStateTransition},
		{shared.CodeNotEditable, ErrCodeNotEditable},
		{shared.CodeLockNotObtained, ErrCodeLockNotObtained},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryDomainCodeHasAStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		t.Run(domainCode, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(apiCode, "ERR_"))
			_, ok := ErrorCodeHTTPStatus[apiCode]
			assert.True(t, ok, "error code %s should be in ErrorCodeHTTPStatus map", apiCode)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewDetailedErrorResponse(t *testing.T) {
	resp := NewDetailedErrorResponse(shared.CodeNotEditable, "cannot edit", "req-1",
		map[string]string{"status": "COMPLETED"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotEditable, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "COMPLETED", resp.Error.Details["status"])

	empty := NewDetailedErrorResponse(shared.CodeNotFound, "missing", "", nil)
	assert.Nil(t, empty.Error.Details)
}

func TestNewValidationErrorResponse(t *testing.T) {
	fields := []ValidationDetail{
		{Field: "vendor_id", Message: "This field is required"},
		{Field: "quantity", Message: "Must be at least 1"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", fields)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Fields, 2)
	assert.Equal(t, "vendor_id", resp.Error.Fields[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Sequence not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "req-test-123", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 101, 2, 50)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(101), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	zero := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, zero.Meta.TotalPages)
}

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = PageRequest{Page: 3, PageSize: 10}.Normalize()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PageSize)
}
