package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/billingd/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const paymentNumberPrefix = "PAY"

// GormPaymentRepository implements billing.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID loads a payment by its ID.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns all payments of an invoice, oldest first.
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// FindAll returns payments matching the filter, with the total count
// before pagination.
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter billing.PaymentFilter) ([]billing.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})

	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.PaidFrom != nil {
		query = query.Where("payment_date >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("payment_date <= ?", *filter.PaidTo)
	}
	if filter.Search != "" {
		query = query.Where("payment_number ILIKE ? OR reference ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, paymentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var paymentModels []models.PaymentModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, total, nil
}

// Save inserts or updates a payment.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
}

// Delete removes a payment.
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GeneratePaymentNumber produces the next number in the monthly
// sequence, formatted as PAY + YYYYMM + zero-padded counter.
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context, paymentDate time.Time) (string, error) {
	prefix := paymentNumberPrefix + paymentDate.Format("200601")

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payment_number").
		Where("payment_number LIKE ?", prefix+"%").
		Order("payment_number DESC").
		Limit(1).
		Pluck("payment_number", &maxNumber).Error; err != nil {
		return "", err
	}

	return nextInSequence(prefix, maxNumber), nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
