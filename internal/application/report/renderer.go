package report

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/report"
)

// DocumentRenderer turns a finished report into a printable document.
// Rendering happens after aggregation; a renderer never reads the store.
type DocumentRenderer interface {
	Render(ctx context.Context, r *report.FinancialReport) ([]byte, error)
}

// RenderReport builds the report for the period and renders it
func (s *ReportService) RenderReport(ctx context.Context, renderer DocumentRenderer, start, end time.Time) ([]byte, error) {
	r, err := s.Custom(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, r)
}
