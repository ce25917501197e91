package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/billingd/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements ledger.TransactionRepository
// using GORM.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository.
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID loads a transaction by its ID.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPayment loads the ledger entry mirroring the given payment.
func (r *GormTransactionRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns transactions matching the filter, with the total
// count before pagination.
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, transactionSortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var transactionModels []models.TransactionModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, total, nil
}

// Save inserts or updates a transaction.
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
}

// Delete removes a transaction.
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByAccount returns the number of transactions posted to an account.
func (r *GormTransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

type transactionSumsRow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// SumByAccount returns income and expense totals across all
// transactions of the account.
func (r *GormTransactionRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (ledger.TransactionSums, error) {
	return r.sumByAccount(ctx, accountID, nil)
}

// SumByAccountAsOf is like SumByAccount but only counts transactions
// dated on or before asOf.
func (r *GormTransactionRepository) SumByAccountAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (ledger.TransactionSums, error) {
	return r.sumByAccount(ctx, accountID, &asOf)
}

func (r *GormTransactionRepository) sumByAccount(ctx context.Context, accountID uuid.UUID, asOf *time.Time) (ledger.TransactionSums, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income, "+
				"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense").
		Where("account_id = ?", accountID)
	if asOf != nil {
		query = query.Where("transaction_date <= ?", *asOf)
	}

	var row transactionSumsRow
	if err := query.Scan(&row).Error; err != nil {
		return ledger.TransactionSums{}, err
	}
	return ledger.TransactionSums{Income: row.Income, Expense: row.Expense}, nil
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
