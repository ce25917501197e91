// Package rendering turns finished financial reports into documents.
package rendering

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	appreport "github.com/billingd/backend/internal/application/report"
	"github.com/billingd/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// HTMLRenderer renders a financial report as a self-contained HTML
// document using Go templates with formatting helpers.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer builds a renderer with the default report template.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatMoney":   formatMoney,
		"formatPercent": formatPercent,
		"formatDate":    formatDate,
	}).Parse(defaultReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render implements the DocumentRenderer interface.
func (r *HTMLRenderer) Render(_ context.Context, rep *report.FinancialReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, rep); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

const defaultReportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Financial Report {{formatDate .Period.Start}} to {{formatDate .Period.End}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; margin-top: 1.5em; border-bottom: 1px solid #ccc; }
table { border-collapse: collapse; margin-top: 0.5em; }
td, th { padding: 0.3em 1em 0.3em 0; text-align: left; }
.amount { text-align: right; }
</style>
</head>
<body>
<h1>Financial Report</h1>
<p>Period {{formatDate .Period.Start}} to {{formatDate .Period.End}}, generated {{formatDate .GeneratedAt}}.</p>

<h2>Summary</h2>
<table>
<tr><td>Total income</td><td class="amount">{{formatMoney .Summary.TotalIncome}}</td></tr>
<tr><td>Total expense</td><td class="amount">{{formatMoney .Summary.TotalExpense}}</td></tr>
<tr><td>Net income</td><td class="amount">{{formatMoney .Summary.NetIncome}}</td></tr>
<tr><td>Profit margin</td><td class="amount">{{formatPercent .Summary.ProfitMargin}}</td></tr>
</table>

<h2>Cash Flow</h2>
<table>
<tr><td>Opening balance</td><td class="amount">{{formatMoney .CashFlow.OpeningBalance}}</td></tr>
<tr><td>Closing balance</td><td class="amount">{{formatMoney .CashFlow.ClosingBalance}}</td></tr>
<tr><td>Net change</td><td class="amount">{{formatMoney .CashFlow.NetChange}}</td></tr>
</table>

<h2>Top Income Categories</h2>
<table>
<tr><th>Description</th><th class="amount">Amount</th><th class="amount">Entries</th></tr>
{{range .IncomeAnalysis.Top}}<tr><td>{{.Description}}</td><td class="amount">{{formatMoney .Amount}}</td><td class="amount">{{.Count}}</td></tr>
{{end}}</table>

<h2>Top Expense Categories</h2>
<table>
<tr><th>Description</th><th class="amount">Amount</th><th class="amount">Entries</th></tr>
{{range .ExpenseAnalysis.Top}}<tr><td>{{.Description}}</td><td class="amount">{{formatMoney .Amount}}</td><td class="amount">{{.Count}}</td></tr>
{{end}}</table>

<h2>Top Clients</h2>
<table>
<tr><th>Client</th><th class="amount">Revenue</th><th class="amount">Invoices</th></tr>
{{range .ClientAnalysis.TopClients}}<tr><td>{{.ClientName}}</td><td class="amount">{{formatMoney .Revenue}}</td><td class="amount">{{.InvoiceCount}}</td></tr>
{{end}}</table>

<h2>Trends</h2>
<table>
<tr><th></th><th class="amount">Current</th><th class="amount">Previous</th><th class="amount">Growth</th></tr>
<tr><td>Income</td><td class="amount">{{formatMoney .Trends.Income.Current}}</td><td class="amount">{{formatMoney .Trends.Income.Previous}}</td><td class="amount">{{formatPercent .Trends.Income.Growth}}</td></tr>
<tr><td>Expense</td><td class="amount">{{formatMoney .Trends.Expense.Current}}</td><td class="amount">{{formatMoney .Trends.Expense.Previous}}</td><td class="amount">{{formatPercent .Trends.Expense.Growth}}</td></tr>
<tr><td>Net income</td><td class="amount">{{formatMoney .Trends.NetIncome.Current}}</td><td class="amount">{{formatMoney .Trends.NetIncome.Previous}}</td><td class="amount">{{formatPercent .Trends.NetIncome.Growth}}</td></tr>
</table>
</body>
</html>
`

var _ appreport.DocumentRenderer = (*HTMLRenderer)(nil)
