package dto

import "net/http"

// Stable API error codes. Domain errors pass their own codes through
// unchanged; these cover transport-level failures.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeBodyTooLarge = "BODY_TOO_LARGE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Business
// rule violations are 422, optimistic lock and uniqueness failures 409.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	// Domain error codes ("NOT_FOUND" is already covered by ErrCodeNotFound)
	"ALREADY_EXISTS":          http.StatusConflict,
	"INVALID_INPUT":           http.StatusBadRequest,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"DUPLICATE_EXTERNAL_ID":   http.StatusConflict,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"EMPTY_DOCUMENT":          http.StatusUnprocessableEntity,
	"INVALID_QUANTITY":        http.StatusUnprocessableEntity,
	"STK-NEG-001":             http.StatusUnprocessableEntity,
	"ARAP-ALLOC-422":          http.StatusUnprocessableEntity,
	"INVALID_FX_RATE":         http.StatusUnprocessableEntity,
	"INVALID_DOC_TYPE":        http.StatusUnprocessableEntity,
	"UNSUPPORTED_DOC_TYPE":    http.StatusUnprocessableEntity,
	"INVALID_PARTNER":         http.StatusUnprocessableEntity,
	"INVALID_CASH_ACCOUNT":    http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":          http.StatusUnprocessableEntity,
	"INVALID_CURRENCY":        http.StatusUnprocessableEntity,
	"INVALID_VAT_RATE":        http.StatusUnprocessableEntity,
	"INVALID_PRICE":           http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT":        http.StatusUnprocessableEntity,
	"INVALID_UOM_COEFFICIENT": http.StatusUnprocessableEntity,
	"INVALID_PRODUCT":         http.StatusUnprocessableEntity,
	"EINVOICE_DISABLED":       http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown
// codes are treated as business rule violations rather than server
// faults so new domain codes surface correctly without a mapping entry.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
