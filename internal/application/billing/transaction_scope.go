package billing

import (
	"context"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// payment operation touches. When a function is executed within a scope, all
// repository operations are part of the same database transaction and commit
// or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing and ledger
// repositories within one transaction. A payment write spans all four:
// the payment row, its invoice, the mirrored ledger entry, and the account
// balance. All repositories returned share the same underlying transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// AccountRepo returns the ledger account repository scoped to the current transaction
	AccountRepo() ledger.AccountRepository
	// LedgerRepo returns the ledger transaction repository scoped to the current transaction
	LedgerRepo() ledger.TransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	accountRepo ledger.AccountRepository
	ledgerRepo  ledger.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	accountRepo ledger.AccountRepository,
	ledgerRepo ledger.TransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// AccountRepo returns the ledger account repository.
func (s *NoOpTransactionScope) AccountRepo() ledger.AccountRepository {
	return s.accountRepo
}

// LedgerRepo returns the ledger transaction repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.TransactionRepository {
	return s.ledgerRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
