package models

import (
	"time"

	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	AggregateModel
	Name     string             `gorm:"type:varchar(200);not null"`
	Type     ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	ParentID *uuid.UUID         `gorm:"type:uuid;index"`
	Balance  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	IsActive bool               `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		ParentID:          m.ParentID,
		Balance:           m.Balance,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.Type = a.Type
	m.ParentID = a.ParentID
	m.Balance = a.Balance
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// TransactionModel is the persistence model for a ledger Transaction.
type TransactionModel struct {
	BaseModel
	AccountID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type            ledger.TransactionType `gorm:"type:varchar(20);not null;index"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Description     string                 `gorm:"type:varchar(500);not null"`
	TransactionDate time.Time              `gorm:"not null;index"`
	ClientID        *uuid.UUID             `gorm:"type:uuid;index"`
	ProjectID       *uuid.UUID             `gorm:"type:uuid;index"`
	InvoiceID       *uuid.UUID             `gorm:"type:uuid;index"`
	PaymentID       *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM.
func (TransactionModel) TableName() string {
	return "finance_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		AccountID:       m.AccountID,
		Type:            m.Type,
		Amount:          m.Amount,
		Description:     m.Description,
		TransactionDate: m.TransactionDate,
		ClientID:        m.ClientID,
		ProjectID:       m.ProjectID,
		InvoiceID:       m.InvoiceID,
		PaymentID:       m.PaymentID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AccountID = t.AccountID
	m.Type = t.Type
	m.Amount = t.Amount
	m.Description = t.Description
	m.TransactionDate = t.TransactionDate
	m.ClientID = t.ClientID
	m.ProjectID = t.ProjectID
	m.InvoiceID = t.InvoiceID
	m.PaymentID = t.PaymentID
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
