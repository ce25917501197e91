package dto

import (
	"net/http"
	"testing"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Error Code Mapping Tests
// ============================================================================

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", shared.CodeNotFound, http.StatusNotFound},
		{"invalid input", shared.CodeInvalidInput, http.StatusBadRequest},
		{"invalid reference", shared.CodeInvalidReference, http.StatusUnprocessableEntity},
		{"invalid amount", shared.CodeInvalidAmount, http.StatusUnprocessableEntity},
		{"over allocation", shared.CodeOverAllocation, http.StatusUnprocessableEntity},
		{"not refundable", shared.CodeNotRefundable, http.StatusUnprocessableEntity},
		{"over payment", shared.CodeOverPayment, http.StatusConflict},
		{"invalid transition", shared.CodeInvalidTransition, http.StatusConflict},
		{"immutable invoice", shared.CodeImmutableInvoice, http.StatusConflict},
		{"integrity violation", shared.CodeIntegrityViolation, http.StatusConflict},
		{"configuration error", shared.CodeConfigurationError, http.StatusInternalServerError},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}
