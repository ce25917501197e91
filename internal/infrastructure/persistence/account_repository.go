package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/billingd/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements ledger.AccountRepository using GORM.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID loads an account by its ID.
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns accounts matching the filter, with the total count
// before pagination.
func (r *GormAccountRepository) FindAll(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, accountSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var accountModels []models.AccountModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, total, nil
}

// FindDefaultForType returns the oldest active account of the given
// type. Returns nil without error when no such account exists; the
// caller decides whether that is a configuration problem.
func (r *GormAccountRepository) FindDefaultForType(ctx context.Context, accountType ledger.AccountType) (*ledger.Account, error) {
	var model models.AccountModel
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", accountType, true).
		Order("created_at ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates an account.
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
}

// Delete removes an account.
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountChildren returns the number of accounts whose parent is the
// given account.
func (r *GormAccountRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
