package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/billingd/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceNumberPrefix = "INV"

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository.
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads the full invoice aggregate with its items and terms.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber loads an invoice by its invoice number.
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.preloaded(ctx).First(&model, "invoice_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns invoices matching the filter, with the total count
// before pagination.
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ? OR notes ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, invoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items").
		Preload("Terms", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// Save persists the invoice together with its items and terms. Rows
// removed from the aggregate are deleted.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Terms").
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&model).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			itemIDs[i] = item.ID
		}
		if err := deleteOrphans(tx, &models.InvoiceItemModel{}, model.ID, itemIDs); err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Items).Error; err != nil {
				return err
			}
		}

		termIDs := make([]uuid.UUID, len(model.Terms))
		for i, term := range model.Terms {
			termIDs[i] = term.ID
		}
		if err := deleteOrphans(tx, &models.InvoiceTermModel{}, model.ID, termIDs); err != nil {
			return err
		}
		if len(model.Terms) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Terms).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the invoice and its dependent rows.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceTermModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateInvoiceNumber produces the next number in the monthly
// sequence, formatted as INV + YYYYMM + zero-padded counter.
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error) {
	prefix := invoiceNumberPrefix + issueDate.Format("200601")

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &maxNumber).Error; err != nil {
		return "", err
	}

	return nextInSequence(prefix, maxNumber), nil
}

func (r *GormInvoiceRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Terms", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") })
}

// deleteOrphans removes dependent rows of an invoice that are no longer
// part of the aggregate.
func deleteOrphans(tx *gorm.DB, model any, invoiceID uuid.UUID, keepIDs []uuid.UUID) error {
	query := tx.Where("invoice_id = ?", invoiceID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(model).Error
}

// nextInSequence increments the numeric suffix of the highest existing
// number under the prefix.
func nextInSequence(prefix, maxNumber string) string {
	var next int
	if suffix, ok := strings.CutPrefix(maxNumber, prefix); ok {
		next, _ = strconv.Atoi(suffix)
	}
	next++
	return fmt.Sprintf("%s%04d", prefix, next)
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
