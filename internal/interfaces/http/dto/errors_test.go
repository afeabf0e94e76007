package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"DUPLICATE_EXTERNAL_ID", http.StatusConflict},
		{"STK-NEG-001", http.StatusUnprocessableEntity},
		{"ARAP-ALLOC-422", http.StatusUnprocessableEntity},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOME_FUTURE_RULE", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Validation failed", []ValidationDetail{
		{Field: "doc_type", Message: "doc_type is required"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
	assert.False(t, resp.Error.Timestamp.IsZero())
}
