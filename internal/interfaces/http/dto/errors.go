package dto

import (
	"net/http"

	"github.com/billingd/backend/internal/domain/shared"
)

// Transport-level error codes for failures that never reach the domain.
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Rule violations that depend on current aggregate state map to 409,
// rule violations intrinsic to the request map to 422.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:         http.StatusNotFound,
	shared.CodeInvalidInput:     http.StatusBadRequest,
	shared.CodeInvalidReference: http.StatusUnprocessableEntity,
	shared.CodeInvalidAmount:    http.StatusUnprocessableEntity,
	shared.CodeOverAllocation:   http.StatusUnprocessableEntity,
	shared.CodeNotRefundable:    http.StatusUnprocessableEntity,

	shared.CodeOverPayment:        http.StatusConflict,
	shared.CodeInvalidTransition:  http.StatusConflict,
	shared.CodeImmutableInvoice:   http.StatusConflict,
	shared.CodeIntegrityViolation: http.StatusConflict,

	shared.CodeConfigurationError: http.StatusInternalServerError,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
