package report

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/report"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topLimit = 10

// ReportService is the read-side report aggregator. It takes no locks; a
// report racing a write may reflect a slightly stale balance.
type ReportService struct {
	repo  report.FinancialReportRepository
	clock shared.Clock
}

// NewReportService creates a new ReportService
func NewReportService(repo report.FinancialReportRepository, clock shared.Clock) *ReportService {
	return &ReportService{repo: repo, clock: clock}
}

// Monthly produces the report for one calendar month
func (s *ReportService) Monthly(ctx context.Context, year, month int) (*report.FinancialReport, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Month must be between 1 and 12")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return s.build(ctx, report.Period{Start: start, End: end})
}

// Quarterly produces the report for one calendar quarter
func (s *ReportService) Quarterly(ctx context.Context, year, quarter int) (*report.FinancialReport, error) {
	if quarter < 1 || quarter > 4 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quarter must be between 1 and 4")
	}
	startMonth := (quarter-1)*3 + 1
	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)
	return s.build(ctx, report.Period{Start: start, End: end})
}

// Yearly produces the report for one calendar year
func (s *ReportService) Yearly(ctx context.Context, year int) (*report.FinancialReport, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return s.build(ctx, report.Period{Start: start, End: end})
}

// Custom produces the report for a caller-supplied range
func (s *ReportService) Custom(ctx context.Context, start, end time.Time) (*report.FinancialReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Start and end dates are required")
	}
	if end.Before(start) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "End date cannot be before start date")
	}
	return s.build(ctx, report.Period{Start: start, End: end})
}

func (s *ReportService) build(ctx context.Context, period report.Period) (*report.FinancialReport, error) {
	summary, err := s.summarize(ctx, period)
	if err != nil {
		return nil, err
	}

	incomeAnalysis, err := s.analyzeFlow(ctx, period, ledger.TransactionTypeIncome.String())
	if err != nil {
		return nil, err
	}
	expenseAnalysis, err := s.analyzeFlow(ctx, period, ledger.TransactionTypeExpense.String())
	if err != nil {
		return nil, err
	}

	cashFlow, err := s.analyzeCashFlow(ctx, period)
	if err != nil {
		return nil, err
	}
	clientAnalysis, err := s.analyzeClients(ctx, period)
	if err != nil {
		return nil, err
	}

	projectActivity, err := s.repo.ProjectActivity(ctx, period)
	if err != nil {
		return nil, err
	}
	invoiceActivity, err := s.repo.InvoiceActivity(ctx, period)
	if err != nil {
		return nil, err
	}
	paymentActivity, err := s.repo.PaymentActivity(ctx, period)
	if err != nil {
		return nil, err
	}

	trends, err := s.analyzeTrends(ctx, period, summary)
	if err != nil {
		return nil, err
	}

	return &report.FinancialReport{
		Period:          period,
		GeneratedAt:     s.clock.Now(),
		Summary:         *summary,
		IncomeAnalysis:  *incomeAnalysis,
		ExpenseAnalysis: *expenseAnalysis,
		CashFlow:        *cashFlow,
		ClientAnalysis:  *clientAnalysis,
		ProjectActivity: projectActivity,
		InvoiceActivity: invoiceActivity,
		PaymentActivity: paymentActivity,
		Trends:          *trends,
	}, nil
}

func (s *ReportService) summarize(ctx context.Context, period report.Period) (*report.Summary, error) {
	totals, err := s.repo.SumFlows(ctx, period)
	if err != nil {
		return nil, err
	}
	net := totals.Income.Sub(totals.Expense)
	margin := decimal.Zero
	if !totals.Income.IsZero() {
		margin = net.Div(totals.Income).Mul(decimal.NewFromInt(100))
	}
	return &report.Summary{
		Period:       period,
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		NetIncome:    net,
		ProfitMargin: margin,
	}, nil
}

func (s *ReportService) analyzeFlow(ctx context.Context, period report.Period, transactionType string) (*report.FlowAnalysis, error) {
	byCategory, err := s.repo.FlowByCategory(ctx, period, transactionType, 0)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.repo.FlowByMonth(ctx, period, transactionType)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountFlows(ctx, period, transactionType)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range byCategory {
		total = total.Add(c.Amount)
	}
	average := decimal.Zero
	if count > 0 {
		average = total.Div(decimal.NewFromInt(count))
	}

	top := byCategory
	if len(top) > topLimit {
		top = top[:topLimit]
	}

	return &report.FlowAnalysis{
		Total:      total,
		Average:    average,
		ByCategory: byCategory,
		ByMonth:    byMonth,
		Top:        top,
	}, nil
}

func (s *ReportService) analyzeCashFlow(ctx context.Context, period report.Period) (*report.CashFlow, error) {
	opening, err := s.repo.TotalBalanceAsOf(ctx, period.Start.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	closing, err := s.repo.TotalBalanceAsOf(ctx, period.End)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailyFlows(ctx, period)
	if err != nil {
		return nil, err
	}
	return &report.CashFlow{
		OpeningBalance: opening,
		ClosingBalance: closing,
		NetChange:      closing.Sub(opening),
		DailyFlows:     daily,
	}, nil
}

func (s *ReportService) analyzeClients(ctx context.Context, period report.Period) (*report.ClientAnalysis, error) {
	top, err := s.repo.TopClientsByRevenue(ctx, period, topLimit)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.ActiveClientIDs(ctx, period)
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.ActiveClientIDs(ctx, period.Previous())
	if err != nil {
		return nil, err
	}

	retention := decimal.Zero
	if len(previous) > 0 {
		prevSet := make(map[uuid.UUID]struct{}, len(previous))
		for _, id := range previous {
			prevSet[id] = struct{}{}
		}
		retained := 0
		for _, id := range current {
			if _, ok := prevSet[id]; ok {
				retained++
			}
		}
		retention = decimal.NewFromInt(int64(retained)).
			Div(decimal.NewFromInt(int64(len(previous)))).
			Mul(decimal.NewFromInt(100))
	}

	return &report.ClientAnalysis{
		TopClients:    top,
		ActiveClients: int64(len(current)),
		RetentionRate: retention,
	}, nil
}

func (s *ReportService) analyzeTrends(ctx context.Context, period report.Period, current *report.Summary) (*report.Trends, error) {
	previous, err := s.summarize(ctx, period.Previous())
	if err != nil {
		return nil, err
	}
	return &report.Trends{
		Income:    growthRate(current.TotalIncome, previous.TotalIncome),
		Expense:   growthRate(current.TotalExpense, previous.TotalExpense),
		NetIncome: growthRate(current.NetIncome, previous.NetIncome),
	}, nil
}

// growthRate compares two values as a percentage, 0 when the base is 0
func growthRate(current, previous decimal.Decimal) report.GrowthRate {
	growth := decimal.Zero
	if !previous.IsZero() {
		growth = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	}
	return report.GrowthRate{
		Current:  current,
		Previous: previous,
		Growth:   growth,
	}
}
