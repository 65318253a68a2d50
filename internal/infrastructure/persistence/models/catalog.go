package models

import (
	"github.com/erp/purchasing/internal/domain/catalog"
)

// InventoryItemModel is the persistence model for a catalog inventory item.
type InventoryItemModel struct {
	BaseModel
	SoftDeleteModel
	SKU          string               `gorm:"column:sku;type:varchar(100);not null;index"`
	Name         string               `gorm:"type:varchar(255);not null"`
	TrackingType catalog.TrackingType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem
func (m *InventoryItemModel) ToDomain() *catalog.InventoryItem {
	return &catalog.InventoryItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		SKU:           m.SKU,
		Name:          m.Name,
		TrackingType:  m.TrackingType,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem
func (m *InventoryItemModel) FromDomain(i *catalog.InventoryItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.IsActive = i.IsActive
	m.SKU = i.SKU
	m.Name = i.Name
	m.TrackingType = i.TrackingType
}

// InventoryItemModelFromDomain creates a new persistence model from domain InventoryItem
func InventoryItemModelFromDomain(i *catalog.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}
