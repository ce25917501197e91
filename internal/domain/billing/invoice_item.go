package billing

import (
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is a line item belonging to an invoice. TotalPrice is always
// quantity times unit price; it is stored rather than derived so reports can
// sum it directly.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

func newInvoiceItem(invoiceID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	if description == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Item unit price cannot be negative")
	}
	return &InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  quantity.Mul(unitPrice),
	}, nil
}

func (it *InvoiceItem) update(description string, quantity, unitPrice decimal.Decimal) error {
	if description == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Item unit price cannot be negative")
	}
	it.Description = description
	it.Quantity = quantity
	it.UnitPrice = unitPrice
	it.TotalPrice = quantity.Mul(unitPrice)
	it.UpdatedAt = time.Now()
	return nil
}
