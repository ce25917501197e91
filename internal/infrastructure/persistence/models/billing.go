package models

import (
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProjectID     *uuid.UUID            `gorm:"type:uuid;index"`
	IssueDate     time.Time             `gorm:"not null;index"`
	DueDate       time.Time             `gorm:"not null;index"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal       `gorm:"type:decimal(7,4);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes         string                `gorm:"type:text"`
	Items         []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Terms         []InvoiceTermModel    `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM.
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		ClientID:          m.ClientID,
		ProjectID:         m.ProjectID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		Total:             m.Total,
		PaidAmount:        m.PaidAmount,
		Status:            m.Status,
		Notes:             m.Notes,
		Items:             make([]billing.InvoiceItem, len(m.Items)),
		Terms:             make([]billing.InvoiceTerm, len(m.Terms)),
	}
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	for i, term := range m.Terms {
		inv.Terms[i] = *term.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ClientID = inv.ClientID
	m.ProjectID = inv.ProjectID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.Total = inv.Total
	m.PaidAmount = inv.PaidAmount
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
	m.Terms = make([]InvoiceTermModel, len(inv.Terms))
	for i, term := range inv.Terms {
		m.Terms[i] = *InvoiceTermModelFromDomain(&term)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for InvoiceItem.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM.
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(item *billing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.TotalPrice = item.TotalPrice
	return m
}

// InvoiceTermModel is the persistence model for InvoiceTerm.
type InvoiceTermModel struct {
	BaseModel
	InvoiceID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Sequence   int                `gorm:"not null"`
	Percentage decimal.Decimal    `gorm:"type:decimal(7,4);not null"`
	Amount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	DueDate    time.Time          `gorm:"not null;index"`
	Status     billing.TermStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM.
func (InvoiceTermModel) TableName() string {
	return "invoice_terms"
}

// ToDomain converts the persistence model to a domain InvoiceTerm.
func (m *InvoiceTermModel) ToDomain() *billing.InvoiceTerm {
	return &billing.InvoiceTerm{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		Sequence:   m.Sequence,
		Percentage: m.Percentage,
		Amount:     m.Amount,
		DueDate:    m.DueDate,
		Status:     m.Status,
	}
}

// InvoiceTermModelFromDomain creates a new persistence model from a domain InvoiceTerm.
func InvoiceTermModelFromDomain(term *billing.InvoiceTerm) *InvoiceTermModel {
	m := &InvoiceTermModel{}
	m.FromDomainBaseEntity(term.BaseEntity)
	m.InvoiceID = term.InvoiceID
	m.Sequence = term.Sequence
	m.Percentage = term.Percentage
	m.Amount = term.Amount
	m.DueDate = term.DueDate
	m.Status = term.Status
	return m
}

// PaymentModel is the persistence model for a Payment.
type PaymentModel struct {
	BaseModel
	PaymentNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	TermID        *uuid.UUID            `gorm:"type:uuid;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time             `gorm:"not null;index"`
	Method        billing.PaymentMethod `gorm:"type:varchar(30);not null"`
	Reference     string                `gorm:"type:varchar(100)"`
	Notes         string                `gorm:"type:text"`
	RefundOfID    *uuid.UUID            `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:    m.BaseModel.ToDomain(),
		PaymentNumber: m.PaymentNumber,
		InvoiceID:     m.InvoiceID,
		TermID:        m.TermID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Method:        m.Method,
		Reference:     m.Reference,
		Notes:         m.Notes,
		RefundOfID:    m.RefundOfID,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PaymentNumber = p.PaymentNumber
	m.InvoiceID = p.InvoiceID
	m.TermID = p.TermID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.RefundOfID = p.RefundOfID
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
