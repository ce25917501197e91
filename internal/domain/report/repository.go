package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlowTotals carries the raw income and expense sums for a period
type FlowTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// FinancialReportRepository is the read-side query interface the aggregator
// builds reports from. Implementations take no locks; a report racing a
// write may read a slightly stale balance.
type FinancialReportRepository interface {
	// SumFlows returns total income and expense over the period.
	SumFlows(ctx context.Context, period Period) (FlowTotals, error)
	// FlowByCategory groups one transaction type by description.
	FlowByCategory(ctx context.Context, period Period, transactionType string, limit int) ([]CategoryBreakdown, error)
	// FlowByMonth buckets one transaction type by calendar month.
	FlowByMonth(ctx context.Context, period Period, transactionType string) ([]MonthlyAmount, error)
	// CountFlows returns the number of entries of one transaction type.
	CountFlows(ctx context.Context, period Period, transactionType string) (int64, error)
	// TotalBalanceAsOf sums signed transaction amounts across all accounts
	// up to and including the given date.
	TotalBalanceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error)
	// DailyFlows returns the per-day income/expense series for the period.
	DailyFlows(ctx context.Context, period Period) ([]DailyFlow, error)
	// TopClientsByRevenue ranks clients by paid-invoice revenue.
	TopClientsByRevenue(ctx context.Context, period Period, limit int) ([]ClientRevenue, error)
	// ActiveClientIDs lists clients with any payment activity in the period.
	ActiveClientIDs(ctx context.Context, period Period) ([]uuid.UUID, error)
	// ProjectActivity aggregates projects by their creation date.
	ProjectActivity(ctx context.Context, period Period) (EntityActivity, error)
	// InvoiceActivity aggregates invoices by their issue date.
	InvoiceActivity(ctx context.Context, period Period) (EntityActivity, error)
	// PaymentActivity aggregates payments by their payment date.
	PaymentActivity(ctx context.Context, period Period) (EntityActivity, error)
}
