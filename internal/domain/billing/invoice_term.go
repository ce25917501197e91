package billing

import (
	"fmt"
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TermStatus represents the payment status of an installment term
type TermStatus string

const (
	TermStatusPending   TermStatus = "pending"
	TermStatusPaid      TermStatus = "paid"
	TermStatusOverdue   TermStatus = "overdue"
	TermStatusCancelled TermStatus = "cancelled"
)

// IsValid checks if the status is a valid TermStatus
func (s TermStatus) IsValid() bool {
	switch s {
	case TermStatusPending, TermStatusPaid, TermStatusOverdue, TermStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TermStatus
func (s TermStatus) String() string {
	return string(s)
}

// InvoiceTerm is an installment of an invoice's total. Amount is a snapshot
// taken from the invoice total at creation time and is never rederived, even
// if the invoice's line items change afterwards.
type InvoiceTerm struct {
	shared.BaseEntity
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Sequence   int             `json:"sequence"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Status     TermStatus      `json:"status"`
}

// TermSpec describes one installment to create on an invoice
type TermSpec struct {
	Percentage decimal.Decimal
	DueDate    time.Time
}

// AddTerms creates installment terms on the invoice. The percentages of the
// new terms plus any existing ones must not exceed 100; each term's amount is
// snapshotted from the current invoice total.
func (inv *Invoice) AddTerms(specs []TermSpec) ([]InvoiceTerm, error) {
	if !inv.canModifyItems() {
		return nil, shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify terms of a %s invoice", inv.Status))
	}
	if len(specs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one term is required")
	}

	allocated := decimal.Zero
	for _, t := range inv.Terms {
		allocated = allocated.Add(t.Percentage)
	}
	for _, s := range specs {
		if !s.Percentage.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Term percentage must be positive")
		}
		if s.DueDate.IsZero() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Term due date is required")
		}
		allocated = allocated.Add(s.Percentage)
	}
	if allocated.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError(shared.CodeOverAllocation,
			fmt.Sprintf("Term percentages total %s%%, exceeding 100%%", allocated.String()))
	}

	created := make([]InvoiceTerm, 0, len(specs))
	seq := len(inv.Terms)
	for _, s := range specs {
		seq++
		term := InvoiceTerm{
			BaseEntity: shared.NewBaseEntity(),
			InvoiceID:  inv.ID,
			Sequence:   seq,
			Percentage: s.Percentage,
			Amount:     inv.Total.Mul(s.Percentage).Div(decimal.NewFromInt(100)).Round(2),
			DueDate:    s.DueDate,
			Status:     TermStatusPending,
		}
		inv.Terms = append(inv.Terms, term)
		created = append(created, term)
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return created, nil
}

// RemoveTerm deletes a pending or overdue term. Paid terms cannot be removed.
func (inv *Invoice) RemoveTerm(termID uuid.UUID) error {
	if !inv.canModifyItems() {
		return shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify terms of a %s invoice", inv.Status))
	}
	for i := range inv.Terms {
		if inv.Terms[i].ID == termID {
			if inv.Terms[i].Status == TermStatusPaid {
				return shared.NewDomainError(shared.CodeInvalidTransition, "Cannot remove a paid term")
			}
			inv.Terms = append(inv.Terms[:i], inv.Terms[i+1:]...)
			inv.UpdatedAt = time.Now()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Invoice term not found")
}

// FindTerm returns the term with the given ID, or nil
func (inv *Invoice) FindTerm(termID uuid.UUID) *InvoiceTerm {
	for i := range inv.Terms {
		if inv.Terms[i].ID == termID {
			return &inv.Terms[i]
		}
	}
	return nil
}

// SettleTerm marks a term paid when the applied payment covers its amount.
// The payment amount must be at least the term amount; partial term payments
// leave the term pending.
func (inv *Invoice) SettleTerm(termID uuid.UUID, paymentAmount decimal.Decimal) error {
	term := inv.FindTerm(termID)
	if term == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Invoice term not found")
	}
	if term.Status == TermStatusPaid {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Term is already paid")
	}
	if paymentAmount.GreaterThanOrEqual(term.Amount) {
		term.Status = TermStatusPaid
		term.UpdatedAt = time.Now()
		inv.UpdatedAt = term.UpdatedAt
		inv.IncrementVersion()
	}
	return nil
}

// ReopenTerm takes a paid term back to pending or overdue when the payment
// that settled it is removed or shrunk below the term amount.
func (inv *Invoice) ReopenTerm(termID uuid.UUID, now time.Time) error {
	term := inv.FindTerm(termID)
	if term == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Invoice term not found")
	}
	if term.Status != TermStatusPaid {
		return nil
	}
	if term.DueDate.Before(now) {
		term.Status = TermStatusOverdue
	} else {
		term.Status = TermStatusPending
	}
	term.UpdatedAt = now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}
