package billing

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	shared.Filter
	Status     InvoiceStatus
	ClientID   *uuid.UUID
	ProjectID  *uuid.UUID
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

// InvoiceRepository is the persistence interface for invoices. Loads always
// return the full aggregate with items and terms.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GenerateInvoiceNumber produces the next number in the monthly
	// sequence for the given issue date.
	GenerateInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error)
}

// PaymentFilter narrows payment queries
type PaymentFilter struct {
	shared.Filter
	InvoiceID *uuid.UUID
	Method    PaymentMethod
	PaidFrom  *time.Time
	PaidTo    *time.Time
}

// PaymentRepository is the persistence interface for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GeneratePaymentNumber produces the next number in the monthly
	// sequence for the given payment date.
	GeneratePaymentNumber(ctx context.Context, paymentDate time.Time) (string, error)
}
