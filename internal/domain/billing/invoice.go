package billing

import (
	"fmt"
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further status transitions are allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// invoiceTransitions is the status transition table. Transitions driven by
// payments (marking paid, reverting to sent) and the lazy overdue derivation
// go through their own orchestration methods, not this table.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:      {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Invoice is the billable-document aggregate root. It owns its line items and
// installment terms; payments are separate entities that reference it.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Status        InvoiceStatus   `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	Items         []InvoiceItem   `json:"items"`
	Terms         []InvoiceTerm   `json:"terms"`
}

// NewInvoice creates a new invoice in draft status
func NewInvoice(
	invoiceNumber string,
	clientID uuid.UUID,
	projectID *uuid.UUID,
	issueDate, dueDate time.Time,
	taxRate decimal.Decimal,
	notes string,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidReference, "Client ID cannot be empty")
	}
	if issueDate.IsZero() || dueDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Issue date and due date are required")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Due date cannot be before issue date")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		ClientID:          clientID,
		ProjectID:         projectID,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Subtotal:          decimal.Zero,
		TaxRate:           taxRate,
		TaxAmount:         decimal.Zero,
		Total:             decimal.Zero,
		PaidAmount:        decimal.Zero,
		Status:            InvoiceStatusDraft,
		Notes:             notes,
		Items:             []InvoiceItem{},
		Terms:             []InvoiceTerm{},
	}, nil
}

// RemainingBalance is the total minus all payments, floored at zero
func (inv *Invoice) RemainingBalance() decimal.Decimal {
	remaining := inv.Total.Sub(inv.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyPaid reports whether payments cover the total
func (inv *Invoice) IsFullyPaid() bool {
	return inv.Total.GreaterThan(decimal.Zero) && inv.PaidAmount.GreaterThanOrEqual(inv.Total)
}

// canModifyItems reports whether line items and terms may still change
func (inv *Invoice) canModifyItems() bool {
	return inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusSent
}

// RecalculateTotals rederives subtotal, tax amount and total from the line
// items. Called after every item mutation; tax is rounded to two places.
func (inv *Invoice) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	inv.Total = subtotal.Add(inv.TaxAmount)
	inv.UpdatedAt = time.Now()
}

// AddItem appends a line item and recalculates totals
func (inv *Invoice) AddItem(description string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	if !inv.canModifyItems() {
		return nil, shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify items of a %s invoice", inv.Status))
	}
	item, err := newInvoiceItem(inv.ID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, *item)
	inv.RecalculateTotals()
	inv.IncrementVersion()
	return item, nil
}

// UpdateItem mutates an existing line item and recalculates totals
func (inv *Invoice) UpdateItem(itemID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) error {
	if !inv.canModifyItems() {
		return shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify items of a %s invoice", inv.Status))
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			if err := inv.Items[i].update(description, quantity, unitPrice); err != nil {
				return err
			}
			inv.RecalculateTotals()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Invoice item not found")
}

// RemoveItem deletes a line item and recalculates totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.canModifyItems() {
		return shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify items of a %s invoice", inv.Status))
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.RecalculateTotals()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Invoice item not found")
}

// ChangeStatus moves the invoice to a new status, validated against the
// transition table.
func (inv *Invoice) ChangeStatus(next InvoiceStatus) error {
	if !next.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invoice status is not valid")
	}
	if !inv.Status.CanTransitionTo(next) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot transition invoice from %s to %s", inv.Status, next))
	}
	inv.Status = next
	if next == InvoiceStatusCancelled {
		for i := range inv.Terms {
			if inv.Terms[i].Status == TermStatusPending || inv.Terms[i].Status == TermStatusOverdue {
				inv.Terms[i].Status = TermStatusCancelled
			}
		}
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// RefreshOverdue lazily derives overdue status: a sent invoice whose due date
// has passed becomes overdue, and pending terms past their due date become
// overdue. Returns true when anything changed and needs persisting.
func (inv *Invoice) RefreshOverdue(now time.Time) bool {
	changed := false
	if inv.Status == InvoiceStatusSent && inv.DueDate.Before(now) {
		inv.Status = InvoiceStatusOverdue
		changed = true
	}
	for i := range inv.Terms {
		if inv.Terms[i].Status == TermStatusPending && inv.Terms[i].DueDate.Before(now) {
			inv.Terms[i].Status = TermStatusOverdue
			changed = true
		}
	}
	if changed {
		inv.UpdatedAt = now
		inv.IncrementVersion()
	}
	return changed
}

// ApplyPayment records a payment amount against the invoice and marks it paid
// when fully covered. Refunds pass a negative amount, which can take a paid
// invoice back to sent.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) {
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.reevaluatePaid()
}

// RemovePayment undoes a payment's contribution to the paid amount
func (inv *Invoice) RemovePayment(amount decimal.Decimal) {
	inv.PaidAmount = inv.PaidAmount.Sub(amount)
	inv.reevaluatePaid()
}

// reevaluatePaid synchronizes the status with the paid amount. This is a
// payment-driven side effect, deliberately outside the public transition
// table: fully covered invoices become paid, and a paid invoice that no
// longer qualifies reverts to sent.
func (inv *Invoice) reevaluatePaid() {
	if inv.IsFullyPaid() {
		if inv.Status != InvoiceStatusCancelled {
			inv.Status = InvoiceStatusPaid
		}
	} else if inv.Status == InvoiceStatusPaid {
		inv.Status = InvoiceStatusSent
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// SetNotes updates the free-form notes
func (inv *Invoice) SetNotes(notes string) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError(shared.CodeImmutableInvoice,
			fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}
