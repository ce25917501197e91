package persistence

import (
	"context"

	appledger "github.com/billingd/backend/internal/application/ledger"
	"github.com/billingd/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope
// using GORM transactions. Recording or removing an entry updates the
// stored account balance in the same transaction.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

// AccountRepo returns the account repository scoped to the current transaction.
func (r *gormLedgerRepositories) AccountRepo() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// TransactionRepo returns the transaction repository scoped to the current transaction.
func (r *gormLedgerRepositories) TransactionRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
