package persistence

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFinancialReportRepository implements the read-side query
// interface the report aggregator builds from. Every query is an
// aggregate over finance_transactions or the billing tables; no rows
// are ever locked.
type GormFinancialReportRepository struct {
	db *gorm.DB
}

// NewGormFinancialReportRepository creates a new GormFinancialReportRepository.
func NewGormFinancialReportRepository(db *gorm.DB) *GormFinancialReportRepository {
	return &GormFinancialReportRepository{db: db}
}

// SumFlows returns total income and expense over the period.
func (r *GormFinancialReportRepository) SumFlows(ctx context.Context, period report.Period) (report.FlowTotals, error) {
	var row struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("finance_transactions").
		Select(
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income, " +
				"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense").
		Where("transaction_date BETWEEN ? AND ?", period.Start, period.End).
		Scan(&row).Error
	if err != nil {
		return report.FlowTotals{}, err
	}
	return report.FlowTotals{Income: row.Income, Expense: row.Expense}, nil
}

// FlowByCategory groups one transaction type by description.
func (r *GormFinancialReportRepository) FlowByCategory(ctx context.Context, period report.Period, transactionType string, limit int) ([]report.CategoryBreakdown, error) {
	var rows []report.CategoryBreakdown
	query := r.db.WithContext(ctx).
		Table("finance_transactions").
		Select("description, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count").
		Where("type = ?", transactionType).
		Where("transaction_date BETWEEN ? AND ?", period.Start, period.End).
		Group("description").
		Order("amount DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FlowByMonth buckets one transaction type by calendar month.
func (r *GormFinancialReportRepository) FlowByMonth(ctx context.Context, period report.Period, transactionType string) ([]report.MonthlyAmount, error) {
	var rows []report.MonthlyAmount
	err := r.db.WithContext(ctx).
		Table("finance_transactions").
		Select(
			"EXTRACT(YEAR FROM transaction_date)::int AS year, "+
				"EXTRACT(MONTH FROM transaction_date)::int AS month, "+
				"COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count").
		Where("type = ?", transactionType).
		Where("transaction_date BETWEEN ? AND ?", period.Start, period.End).
		Group("year, month").
		Order("year ASC, month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountFlows returns the number of entries of one transaction type.
func (r *GormFinancialReportRepository) CountFlows(ctx context.Context, period report.Period, transactionType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("finance_transactions").
		Where("type = ?", transactionType).
		Where("transaction_date BETWEEN ? AND ?", period.Start, period.End).
		Count(&count).Error
	return count, err
}

// TotalBalanceAsOf sums signed transaction amounts across all accounts
// up to and including the given date.
func (r *GormFinancialReportRepository) TotalBalanceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("finance_transactions").
		Select("COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)").
		Where("transaction_date <= ?", date).
		Scan(&balance).Error
	return balance, err
}

// DailyFlows returns the per-day income/expense series for the period.
func (r *GormFinancialReportRepository) DailyFlows(ctx context.Context, period report.Period) ([]report.DailyFlow, error) {
	var rows []struct {
		Date    time.Time
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("finance_transactions").
		Select(
			"DATE_TRUNC('day', transaction_date) AS date, "+
				"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income, "+
				"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense").
		Where("transaction_date BETWEEN ? AND ?", period.Start, period.End).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	flows := make([]report.DailyFlow, len(rows))
	for i, row := range rows {
		flows[i] = report.DailyFlow{
			Date:    row.Date,
			Income:  row.Income,
			Expense: row.Expense,
			NetFlow: row.Income.Sub(row.Expense),
		}
	}
	return flows, nil
}

// TopClientsByRevenue ranks clients by paid-invoice revenue in the period.
func (r *GormFinancialReportRepository) TopClientsByRevenue(ctx context.Context, period report.Period, limit int) ([]report.ClientRevenue, error) {
	var rows []report.ClientRevenue
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select(
			"i.client_id, COALESCE(c.name, '') AS client_name, "+
				"COALESCE(SUM(i.paid_amount), 0) AS revenue, COUNT(*) AS invoice_count").
		Joins("LEFT JOIN clients c ON c.id = i.client_id").
		Where("i.status = 'paid'").
		Where("i.issue_date BETWEEN ? AND ?", period.Start, period.End).
		Group("i.client_id, c.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveClientIDs lists clients with any payment activity in the period.
func (r *GormFinancialReportRepository) ActiveClientIDs(ctx context.Context, period report.Period) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("payments p").
		Distinct("i.client_id").
		Joins("JOIN invoices i ON i.id = p.invoice_id").
		Where("p.payment_date BETWEEN ? AND ?", period.Start, period.End).
		Pluck("i.client_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ProjectActivity aggregates projects by their creation date.
func (r *GormFinancialReportRepository) ProjectActivity(ctx context.Context, period report.Period) (report.EntityActivity, error) {
	return r.entityActivity(ctx, period, "projects", "created_at", "0")
}

// InvoiceActivity aggregates invoices by their issue date.
func (r *GormFinancialReportRepository) InvoiceActivity(ctx context.Context, period report.Period) (report.EntityActivity, error) {
	return r.entityActivity(ctx, period, "invoices", "issue_date", "total")
}

// PaymentActivity aggregates payments by their payment date.
func (r *GormFinancialReportRepository) PaymentActivity(ctx context.Context, period report.Period) (report.EntityActivity, error) {
	return r.entityActivity(ctx, period, "payments", "payment_date", "amount")
}

func (r *GormFinancialReportRepository) entityActivity(ctx context.Context, period report.Period, table, dateColumn, amountExpr string) (report.EntityActivity, error) {
	var totals struct {
		Count int64
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table(table).
		Select("COUNT(*) AS count, COALESCE(SUM("+amountExpr+"), 0) AS total").
		Where(dateColumn+" BETWEEN ? AND ?", period.Start, period.End).
		Scan(&totals).Error
	if err != nil {
		return report.EntityActivity{}, err
	}

	var byMonth []report.MonthlyAmount
	err = r.db.WithContext(ctx).
		Table(table).
		Select(
			"EXTRACT(YEAR FROM "+dateColumn+")::int AS year, "+
				"EXTRACT(MONTH FROM "+dateColumn+")::int AS month, "+
				"COALESCE(SUM("+amountExpr+"), 0) AS amount, COUNT(*) AS count").
		Where(dateColumn+" BETWEEN ? AND ?", period.Start, period.End).
		Group("year, month").
		Order("year ASC, month ASC").
		Scan(&byMonth).Error
	if err != nil {
		return report.EntityActivity{}, err
	}

	return report.EntityActivity{
		Count:   totals.Count,
		Total:   totals.Total,
		ByMonth: byMonth,
	}, nil
}

var _ report.FinancialReportRepository = (*GormFinancialReportRepository)(nil)
