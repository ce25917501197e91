package ledger

import (
	"context"

	"github.com/billingd/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// A ledger write always pairs the transaction row with its account balance
// update; both commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. Both repositories share the same underlying transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the account repository scoped to the current transaction
	AccountRepo() ledger.AccountRepository
	// TransactionRepo returns the transaction repository scoped to the current transaction
	TransactionRepo() ledger.TransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	accountRepo     ledger.AccountRepository
	transactionRepo ledger.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	accountRepo ledger.AccountRepository,
	transactionRepo ledger.TransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository.
func (s *NoOpTransactionScope) AccountRepo() ledger.AccountRepository {
	return s.accountRepo
}

// TransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() ledger.TransactionRepository {
	return s.transactionRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
