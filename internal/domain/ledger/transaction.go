package ledger

import (
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Transaction is one ledger entry. The amount is always stored positive; the
// sign is derived from the type. Entries that mirror a payment carry the
// payment reference and may only be mutated or deleted through the payment
// that owns them.
type Transaction struct {
	shared.BaseEntity
	AccountID       uuid.UUID       `json:"account_id"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
}

// NewTransaction creates a new ledger transaction
func NewTransaction(
	accountID uuid.UUID,
	transactionType TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidReference, "Account ID cannot be empty")
	}
	if !transactionType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Transaction type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Transaction amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Transaction date is required")
	}

	return &Transaction{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       accountID,
		Type:            transactionType,
		Amount:          amount,
		Description:     description,
		TransactionDate: date,
	}, nil
}

// WithReferences attaches optional client/project/invoice/payment references
func (t *Transaction) WithReferences(clientID, projectID, invoiceID, paymentID *uuid.UUID) *Transaction {
	t.ClientID = clientID
	t.ProjectID = projectID
	t.InvoiceID = invoiceID
	t.PaymentID = paymentID
	return t
}

// SignedAmount returns the amount with the sign derived from the type
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsMirror reports whether this entry mirrors a payment. Mirror entries are
// managed exclusively by the payment processor.
func (t *Transaction) IsMirror() bool {
	return t.PaymentID != nil
}

// SyncFromSource updates the amount, date and description from the source
// payment. Only mirror entries are ever synced.
func (t *Transaction) SyncFromSource(amount decimal.Decimal, date time.Time, description string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Transaction amount must be positive")
	}
	t.Amount = amount
	t.TransactionDate = date
	t.Description = description
	t.UpdatedAt = time.Now()
	return nil
}
