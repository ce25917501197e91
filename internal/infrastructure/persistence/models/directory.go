package models

import (
	"github.com/billingd/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// ClientModel is the persistence model for the client directory.
type ClientModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200)"`
	Phone string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM.
func (ClientModel) TableName() string {
	return "clients"
}

// ToRef converts the persistence model to a directory reference.
func (m *ClientModel) ToRef() *billing.ClientRef {
	return &billing.ClientRef{
		ID:   m.ID,
		Name: m.Name,
	}
}

// ProjectModel is the persistence model for the project directory.
type ProjectModel struct {
	BaseModel
	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM.
func (ProjectModel) TableName() string {
	return "projects"
}

// ToRef converts the persistence model to a directory reference.
func (m *ProjectModel) ToRef() *billing.ProjectRef {
	return &billing.ProjectRef{
		ID:       m.ID,
		ClientID: m.ClientID,
		Name:     m.Name,
	}
}
