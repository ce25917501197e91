package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Response Builder Tests
// ============================================================================

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"key": "value"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 40, 20, 2},
		{"remainder adds a page", 41, 20, 3},
		{"empty result", 0, 20, 0},
		{"zero page size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)

			assert.True(t, resp.Success)
			assert.NotNil(t, resp.Meta)
			assert.Equal(t, tt.total, resp.Meta.Total)
			assert.Equal(t, tt.wantTotalPages, resp.Meta.TotalPages)
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Invoice not found", "req-123")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Invoice not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}
