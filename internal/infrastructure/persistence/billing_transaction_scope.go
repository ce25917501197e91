package persistence

import (
	"context"

	appbilling "github.com/billingd/backend/internal/application/billing"
	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope
// using GORM transactions. A payment write spans the payment row, its
// invoice, the ledger mirror, and the account balance; all of them
// commit or roll back together.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope.
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

type gormBillingRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormBillingRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormBillingRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// AccountRepo returns the ledger account repository scoped to the current transaction.
func (r *gormBillingRepositories) AccountRepo() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// LedgerRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormBillingRepositories) LedgerRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
