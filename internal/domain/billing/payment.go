package billing

import (
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCheck, PaymentMethodPayPal, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment records money received against an invoice. A negative amount is a
// refund. Payments are mirrored into the ledger as transactions; the mirror
// carries this payment's ID so the two stay in sync.
type Payment struct {
	shared.BaseEntity
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	TermID        *uuid.UUID      `json:"term_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	RefundOfID    *uuid.UUID      `json:"refund_of_id,omitempty"`
}

// NewPayment creates a payment. Amount may be negative for refunds but never
// zero.
func NewPayment(
	paymentNumber string,
	invoiceID uuid.UUID,
	termID *uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	reference, notes string,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidReference, "Invoice ID cannot be empty")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount cannot be zero")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment method is not valid")
	}

	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		PaymentNumber: paymentNumber,
		InvoiceID:     invoiceID,
		TermID:        termID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		Method:        method,
		Reference:     reference,
		Notes:         notes,
	}, nil
}

// IsRefund reports whether this payment takes money back out
func (p *Payment) IsRefund() bool {
	return p.Amount.IsNegative()
}

// Update mutates the payment's details
func (p *Payment) Update(amount decimal.Decimal, paymentDate time.Time, method PaymentMethod, reference, notes string) error {
	if amount.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount cannot be zero")
	}
	if paymentDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment date is required")
	}
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment method is not valid")
	}
	p.Amount = amount
	p.PaymentDate = paymentDate
	p.Method = method
	p.Reference = reference
	p.Notes = notes
	p.UpdatedAt = time.Now()
	return nil
}

// MarkRefundOf links a refund payment back to the payment it reverses
func (p *Payment) MarkRefundOf(originalID uuid.UUID) {
	p.RefundOfID = &originalID
}
