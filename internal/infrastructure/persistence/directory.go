package persistence

import (
	"context"
	"errors"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientDirectory implements billing.ClientDirectory against the
// clients table.
type GormClientDirectory struct {
	db *gorm.DB
}

// NewGormClientDirectory creates a new GormClientDirectory.
func NewGormClientDirectory(db *gorm.DB) *GormClientDirectory {
	return &GormClientDirectory{db: db}
}

// FindClient loads a client reference by ID. Returns nil without
// error when the client does not exist; the caller maps that to its
// own error.
func (d *GormClientDirectory) FindClient(ctx context.Context, id uuid.UUID) (*billing.ClientRef, error) {
	var model models.ClientModel
	err := d.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToRef(), nil
}

// ClientExists reports whether a client with the given ID exists.
func (d *GormClientDirectory) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// GormProjectDirectory implements billing.ProjectDirectory against the
// projects table.
type GormProjectDirectory struct {
	db *gorm.DB
}

// NewGormProjectDirectory creates a new GormProjectDirectory.
func NewGormProjectDirectory(db *gorm.DB) *GormProjectDirectory {
	return &GormProjectDirectory{db: db}
}

// FindProject loads a project reference by ID. Returns nil without
// error when the project does not exist; the caller maps that to its
// own error.
func (d *GormProjectDirectory) FindProject(ctx context.Context, id uuid.UUID) (*billing.ProjectRef, error) {
	var model models.ProjectModel
	err := d.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToRef(), nil
}

// ProjectExists reports whether a project with the given ID exists.
func (d *GormProjectDirectory) ProjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

var _ billing.ClientDirectory = (*GormClientDirectory)(nil)
var _ billing.ProjectDirectory = (*GormProjectDirectory)(nil)
