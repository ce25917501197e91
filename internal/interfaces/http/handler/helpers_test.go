package handler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Query Parsing Tests
// ============================================================================

func TestParseDate(t *testing.T) {
	t.Run("empty yields nil", func(t *testing.T) {
		got, err := parseDate("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("valid date", func(t *testing.T) {
		got, err := parseDate("2024-03-15")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := parseDate("15/03/2024")
		assert.Error(t, err)
	})
}

func TestParseEndDate(t *testing.T) {
	got, err := parseEndDate("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)

	// End of day so the range stays inclusive
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 23, got.Hour())
	assert.True(t, got.Before(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)))
}

func TestParseOptionalID(t *testing.T) {
	t.Run("empty yields nil", func(t *testing.T) {
		got, err := parseOptionalID("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("valid uuid", func(t *testing.T) {
		id := uuid.New()
		got, err := parseOptionalID(id.String())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, *got)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		_, err := parseOptionalID("not-a-uuid")
		assert.Error(t, err)
	})
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"negative values", -3, -10, 1, 20},
		{"page size capped", 2, 500, 2, 100},
		{"valid values kept", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := normalizePage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}
