package models

import (
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// SoftDeleteModel carries the is_active flag. The column has no gorm default
// because GORM omits zero values for defaulted columns on insert.
type SoftDeleteModel struct {
	IsActive bool `gorm:"not null;index"`
}

// ToDomain converts SoftDeleteModel to domain SoftDeletable
func (m *SoftDeleteModel) ToDomain() shared.SoftDeletable {
	return shared.SoftDeletable{IsActive: m.IsActive}
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version and the soft delete flag.
type AggregateModel struct {
	BaseModel
	SoftDeleteModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.IsActive = a.IsActive
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		Version:       m.Version,
	}
}
