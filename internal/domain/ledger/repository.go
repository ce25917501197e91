package ledger

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFilter defines filtering options for account queries. Filters are
// explicit parameters; repositories never apply implicit scopes.
type AccountFilter struct {
	shared.Filter
	Type       *AccountType
	ParentID   *uuid.UUID
	ActiveOnly bool
}

// AccountRepository persists ledger accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, int64, error)
	// FindDefaultForType returns the oldest active account of the given
	// type, used as the default posting target for payment mirrors.
	FindDefaultForType(ctx context.Context, accountType AccountType) (*Account, error)
	Save(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
}

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	AccountID *uuid.UUID
	Type      *TransactionType
	ClientID  *uuid.UUID
	InvoiceID *uuid.UUID
	FromDate  *time.Time
	ToDate    *time.Time
}

// TransactionSums holds the income and expense totals of an account
type TransactionSums struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// TransactionRepository persists ledger transactions
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, int64, error)
	Save(ctx context.Context, transaction *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	// SumByAccount returns the income and expense totals across all
	// transactions of the account.
	SumByAccount(ctx context.Context, accountID uuid.UUID) (TransactionSums, error)
	// SumByAccountAsOf is like SumByAccount but only counts transactions
	// with transaction_date on or before asOf. Read-only; never feeds the
	// stored balance.
	SumByAccountAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (TransactionSums, error)
}
