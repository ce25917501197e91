package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/billingd/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInvoiceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	// Requests in these tests are rejected before the service is reached
	NewInvoiceHandler(nil).RegisterRoutes(api)
	return engine
}

// ============================================================================
// Invoice Handler Validation Tests
// ============================================================================

func TestInvoiceHandlerRejectsMalformedIDs(t *testing.T) {
	engine := setupInvoiceRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"get", http.MethodGet, "/api/v1/invoices/not-a-uuid", ""},
		{"update", http.MethodPut, "/api/v1/invoices/not-a-uuid", "{}"},
		{"delete", http.MethodDelete, "/api/v1/invoices/not-a-uuid", ""},
		{"status", http.MethodPost, "/api/v1/invoices/not-a-uuid/status", "{}"},
		{"add item", http.MethodPost, "/api/v1/invoices/not-a-uuid/items", "{}"},
		{"remove term", http.MethodDelete, "/api/v1/invoices/not-a-uuid/terms/also-bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		})
	}
}

func TestInvoiceHandlerRejectsMalformedBody(t *testing.T) {
	engine := setupInvoiceRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"client_id": 42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceListRejectsBadDateFilter(t *testing.T) {
	engine := setupInvoiceRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?from_date=March-1", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceListQueryToFilter(t *testing.T) {
	query := InvoiceListQuery{
		Search:   "acme",
		Status:   "sent",
		FromDate: "2024-01-01",
		ToDate:   "2024-01-31",
	}

	filter, err := query.toFilter()
	require.NoError(t, err)

	assert.Equal(t, "acme", filter.Search)
	assert.Equal(t, "sent", filter.Status)
	require.NotNil(t, filter.FromDate)
	require.NotNil(t, filter.ToDate)
	assert.Equal(t, 31, filter.ToDate.Day())
	assert.Equal(t, 23, filter.ToDate.Hour())
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)
}
