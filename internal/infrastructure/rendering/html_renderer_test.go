package rendering

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/billingd/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// HTMLRenderer Tests
// ============================================================================

func TestHTMLRendererRender(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	rep := &report.FinancialReport{
		Period: report.Period{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		GeneratedAt: time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
		Summary: report.Summary{
			TotalIncome:  decimal.RequireFromString("12500.50"),
			TotalExpense: decimal.RequireFromString("4300.25"),
			NetIncome:    decimal.RequireFromString("8200.25"),
			ProfitMargin: decimal.RequireFromString("65.6"),
		},
		IncomeAnalysis: report.FlowAnalysis{
			Top: []report.CategoryBreakdown{
				{Description: "Consulting", Amount: decimal.RequireFromString("9000"), Count: 4},
			},
		},
		ExpenseAnalysis: report.FlowAnalysis{
			Top: []report.CategoryBreakdown{
				{Description: "Hosting", Amount: decimal.RequireFromString("1200"), Count: 3},
			},
		},
		CashFlow: report.CashFlow{
			OpeningBalance: decimal.RequireFromString("1000"),
			ClosingBalance: decimal.RequireFromString("9200.25"),
			NetChange:      decimal.RequireFromString("8200.25"),
		},
		ClientAnalysis: report.ClientAnalysis{
			TopClients: []report.ClientRevenue{
				{ClientName: "Acme Corp", Revenue: decimal.RequireFromString("7500"), InvoiceCount: 2},
			},
		},
		Trends: report.Trends{
			Income: report.GrowthRate{
				Current:  decimal.RequireFromString("12500.50"),
				Previous: decimal.RequireFromString("10000"),
				Growth:   decimal.RequireFromString("25.0"),
			},
		},
	}

	out, err := renderer.Render(context.Background(), rep)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Period 2024-01-01 to 2024-03-31")
	assert.Contains(t, html, "generated 2024-04-02")
	assert.Contains(t, html, "12500.50")
	assert.Contains(t, html, "65.6%")
	assert.Contains(t, html, "Consulting")
	assert.Contains(t, html, "Hosting")
	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "9200.25")
	assert.Contains(t, html, "25.0%")
}

func TestHTMLRendererEscapesClientNames(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	rep := &report.FinancialReport{
		GeneratedAt: time.Now(),
		ClientAnalysis: report.ClientAnalysis{
			TopClients: []report.ClientRevenue{
				{ClientName: "<script>alert(1)</script>", Revenue: decimal.Zero},
			},
		},
	}

	out, err := renderer.Render(context.Background(), rep)
	require.NoError(t, err)

	html := string(out)
	assert.NotContains(t, html, "<script>alert")
	assert.True(t, strings.Contains(html, "&lt;script&gt;"))
}
