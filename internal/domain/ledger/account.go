package ledger

import (
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies a ledger account bucket
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Direction returns the multiplier applied to the natural transaction sum
// (income minus expense). Liability, equity and expense accounts carry the
// opposite sign so that their balances read positive in normal use.
func (t AccountType) Direction() decimal.Decimal {
	switch t {
	case AccountTypeLiability, AccountTypeEquity, AccountTypeExpense:
		return decimal.NewFromInt(-1)
	default:
		return decimal.NewFromInt(1)
	}
}

// Account is a ledger bucket aggregate root. Its balance always equals the
// signed sum of its transactions; the owning service recomputes it after
// every transaction create or delete.
type Account struct {
	shared.BaseAggregateRoot
	Name     string          `json:"name"`
	Type     AccountType     `json:"type"`
	ParentID *uuid.UUID      `json:"parent_id,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
	IsActive bool            `json:"is_active"`
}

// NewAccount creates a new ledger account
func NewAccount(name string, accountType AccountType, parentID *uuid.UUID) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account name cannot exceed 100 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account type is not valid")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              accountType,
		ParentID:          parentID,
		Balance:           decimal.Zero,
		IsActive:          true,
	}, nil
}

// Rename changes the account name
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Activate marks the account as active
func (a *Account) Activate() {
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Deactivate marks the account as inactive. Inactive accounts keep their
// transaction history but stop being eligible as a default posting target.
func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// RecomputeBalance sets the balance from the total income and expense amounts
// of the account's transactions, applying the account type's sign semantics.
func (a *Account) RecomputeBalance(income, expense decimal.Decimal) {
	a.Balance = SignedBalance(a.Type, income, expense)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// SignedBalance computes a balance from income and expense sums under the
// given account type's sign semantics.
func SignedBalance(accountType AccountType, income, expense decimal.Decimal) decimal.Decimal {
	return income.Sub(expense).Mul(accountType.Direction())
}
