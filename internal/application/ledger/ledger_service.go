package ledger

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService provides application-level account and transaction
// operations. Recording or removing an entry recomputes the owning account's
// balance inside the same unit of work.
type LedgerService struct {
	scope           TransactionScope
	accountRepo     ledger.AccountRepository
	transactionRepo ledger.TransactionRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	accountRepo ledger.AccountRepository,
	transactionRepo ledger.TransactionRepository,
) *LedgerService {
	return &LedgerService{
		scope:           scope,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// AccountResponse represents a ledger account in API responses
type AccountResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	ParentID  *uuid.UUID      `json:"parent_id,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Name     string     `json:"name" binding:"required"`
	Type     string     `json:"type" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// AccountListFilter defines filtering options for account list queries
type AccountListFilter struct {
	Search     string     `form:"search"`
	Type       string     `form:"type"`
	ParentID   *uuid.UUID `form:"parent_id"`
	ActiveOnly bool       `form:"active_only"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RecordTransactionRequest represents a request to record a ledger entry
type RecordTransactionRequest struct {
	AccountID       uuid.UUID       `json:"account_id" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	ClientID        *uuid.UUID      `json:"client_id"`
	ProjectID       *uuid.UUID      `json:"project_id"`
}

// TransactionListFilter defines filtering options for transaction list queries
type TransactionListFilter struct {
	AccountID *uuid.UUID `form:"account_id"`
	Type      string     `form:"type"`
	ClientID  *uuid.UUID `form:"client_id"`
	InvoiceID *uuid.UUID `form:"invoice_id"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// BalanceResponse is the result of a point-in-time balance query
type BalanceResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	AsOf      time.Time       `json:"as_of"`
	Balance   decimal.Decimal `json:"balance"`
}

// ===================== Account Operations =====================

// CreateAccount creates a new ledger account
func (s *LedgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	if req.ParentID != nil {
		if _, err := s.accountRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}
	account, err := ledger.NewAccount(req.Name, ledger.AccountType(req.Type), req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// GetAccountByID gets an account by ID
func (s *LedgerService) GetAccountByID(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ListAccounts lists accounts with pagination
func (s *LedgerService) ListAccounts(ctx context.Context, filter AccountListFilter) (*shared.Paginated[AccountResponse], error) {
	domainFilter := ledger.AccountFilter{
		Filter:     shared.DefaultFilter(),
		ParentID:   filter.ParentID,
		ActiveOnly: filter.ActiveOnly,
	}
	domainFilter.Search = filter.Search
	if filter.Type != "" {
		accountType := ledger.AccountType(filter.Type)
		domainFilter.Type = &accountType
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	accounts, total, err := s.accountRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toAccountResponse(&accounts[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.Limit())
	return &result, nil
}

// UpdateAccount updates an account's name or active flag
func (s *LedgerService) UpdateAccount(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := account.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			account.Activate()
		} else {
			account.Deactivate()
		}
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// DeleteAccount deletes an account that owns no transactions and no children
func (s *LedgerService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	owned, err := s.transactionRepo.CountByAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return shared.NewDomainError(shared.CodeIntegrityViolation,
			"Cannot delete an account that owns transactions")
	}
	children, err := s.accountRepo.CountChildren(ctx, account.ID)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.NewDomainError(shared.CodeIntegrityViolation,
			"Cannot delete an account that has child accounts")
	}
	return s.accountRepo.Delete(ctx, account.ID)
}

// BalanceAsOf computes the account balance counting only transactions up to
// and including the given date. Read-only; the stored balance is untouched.
func (s *LedgerService) BalanceAsOf(ctx context.Context, id uuid.UUID, asOf time.Time) (*BalanceResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sums, err := s.transactionRepo.SumByAccountAsOf(ctx, account.ID, asOf)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		AccountID: account.ID,
		AsOf:      asOf,
		Balance:   ledger.SignedBalance(account.Type, sums.Income, sums.Expense),
	}, nil
}

// ===================== Transaction Operations =====================

// RecordTransaction persists a ledger entry and recomputes the owning
// account's balance in the same unit of work.
func (s *LedgerService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	var entry *ledger.Transaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.AccountRepo().FindByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		entry, err = ledger.NewTransaction(
			account.ID,
			ledger.TransactionType(req.Type),
			req.Amount,
			req.Description,
			req.TransactionDate,
		)
		if err != nil {
			return err
		}
		entry.WithReferences(req.ClientID, req.ProjectID, nil, nil)
		if err := repos.TransactionRepo().Save(ctx, entry); err != nil {
			return err
		}
		return recomputeBalance(ctx, repos, account.ID)
	})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(entry), nil
}

// RecordIncome records a manual income entry
func (s *LedgerService) RecordIncome(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	req.Type = ledger.TransactionTypeIncome.String()
	return s.RecordTransaction(ctx, req)
}

// RecordExpense records a manual expense entry
func (s *LedgerService) RecordExpense(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	req.Type = ledger.TransactionTypeExpense.String()
	return s.RecordTransaction(ctx, req)
}

// RemoveTransaction deletes a ledger entry and recomputes the account
// balance. Entries mirroring a payment are owned by the payment processor
// and cannot be removed here.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.IsMirror() {
			return shared.NewDomainError(shared.CodeIntegrityViolation,
				"Transaction mirrors a payment and can only be removed through it")
		}
		if err := repos.TransactionRepo().Delete(ctx, entry.ID); err != nil {
			return err
		}
		return recomputeBalance(ctx, repos, entry.AccountID)
	})
}

// GetTransactionByID gets a transaction by ID
func (s *LedgerService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	entry, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(entry), nil
}

// ListTransactions lists transactions with pagination
func (s *LedgerService) ListTransactions(ctx context.Context, filter TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	domainFilter := ledger.TransactionFilter{
		Filter:    shared.DefaultFilter(),
		AccountID: filter.AccountID,
		ClientID:  filter.ClientID,
		InvoiceID: filter.InvoiceID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	if filter.Type != "" {
		txType := ledger.TransactionType(filter.Type)
		domainFilter.Type = &txType
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	entries, total, err := s.transactionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, len(entries))
	for i := range entries {
		responses[i] = *toTransactionResponse(&entries[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.Limit())
	return &result, nil
}

func recomputeBalance(ctx context.Context, repos TransactionalRepositories, accountID uuid.UUID) error {
	account, err := repos.AccountRepo().FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	sums, err := repos.TransactionRepo().SumByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	account.RecomputeBalance(sums.Income, sums.Expense)
	return repos.AccountRepo().Save(ctx, account)
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      a.Type.String(),
		ParentID:  a.ParentID,
		Balance:   a.Balance,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Type:            t.Type.String(),
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		ClientID:        t.ClientID,
		ProjectID:       t.ProjectID,
		InvoiceID:       t.InvoiceID,
		PaymentID:       t.PaymentID,
		CreatedAt:       t.CreatedAt,
	}
}
