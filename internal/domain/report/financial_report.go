package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is an inclusive date interval a report covers
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Previous returns the immediately preceding period of identical length
func (p Period) Previous() Period {
	length := p.End.Sub(p.Start)
	end := p.Start.Add(-time.Nanosecond)
	return Period{Start: end.Add(-length), End: end}
}

// Summary is the headline income/expense read model for a period
type Summary struct {
	Period       Period          `json:"period"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetIncome    decimal.Decimal `json:"net_income"`
	ProfitMargin decimal.Decimal `json:"profit_margin"` // NetIncome / TotalIncome * 100, 0 when income is 0
}

// CategoryBreakdown is a per-description aggregate within a flow analysis
type CategoryBreakdown struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Count       int64           `json:"count"`
}

// MonthlyAmount is one calendar-month bucket of a series
type MonthlyAmount struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// FlowAnalysis breaks one transaction type down by description and by month
type FlowAnalysis struct {
	Total      decimal.Decimal     `json:"total"`
	Average    decimal.Decimal     `json:"average"`
	ByCategory []CategoryBreakdown `json:"by_category"`
	ByMonth    []MonthlyAmount     `json:"by_month"`
	Top        []CategoryBreakdown `json:"top"`
}

// DailyFlow is one day's net cash movement
type DailyFlow struct {
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	NetFlow decimal.Decimal `json:"net_flow"`
}

// CashFlow carries opening/closing balances and the daily net flow series
type CashFlow struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	NetChange      decimal.Decimal `json:"net_change"`
	DailyFlows     []DailyFlow     `json:"daily_flows"`
}

// ClientRevenue is one client's paid-invoice revenue in a period
type ClientRevenue struct {
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int64           `json:"invoice_count"`
}

// ClientAnalysis ranks clients and measures retention against the previous
// equal-length period.
type ClientAnalysis struct {
	TopClients    []ClientRevenue `json:"top_clients"`
	ActiveClients int64           `json:"active_clients"`
	RetentionRate decimal.Decimal `json:"retention_rate"` // retained / previous-period active * 100
}

// EntityActivity counts and sums one entity kind bucketed by month. Each
// entity is filtered by its own date column: projects by created_at, invoices
// by issue_date, payments by payment_date.
type EntityActivity struct {
	Count   int64           `json:"count"`
	Total   decimal.Decimal `json:"total"`
	ByMonth []MonthlyAmount `json:"by_month"`
}

// GrowthRate is a current-versus-previous comparison for one measure
type GrowthRate struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Growth   decimal.Decimal `json:"growth"` // percentage, 0 when the previous value is 0
}

// Trends compares the period against the immediately preceding one
type Trends struct {
	Income    GrowthRate `json:"income"`
	Expense   GrowthRate `json:"expense"`
	NetIncome GrowthRate `json:"net_income"`
}

// FinancialReport is the full nested report document for one period
type FinancialReport struct {
	Period          Period          `json:"period"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Summary         Summary         `json:"summary"`
	IncomeAnalysis  FlowAnalysis    `json:"income_analysis"`
	ExpenseAnalysis FlowAnalysis    `json:"expense_analysis"`
	CashFlow        CashFlow        `json:"cash_flow"`
	ClientAnalysis  ClientAnalysis  `json:"client_analysis"`
	ProjectActivity EntityActivity  `json:"project_activity"`
	InvoiceActivity EntityActivity  `json:"invoice_activity"`
	PaymentActivity EntityActivity  `json:"payment_activity"`
	Trends          Trends          `json:"trends"`
}
