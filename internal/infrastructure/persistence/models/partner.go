package models

import (
	"github.com/erp/purchasing/internal/domain/partner"
)

// VendorModel is the persistence model for a vendor.
type VendorModel struct {
	BaseModel
	SoftDeleteModel
	Name    string `gorm:"type:varchar(255);not null;index"`
	Email   string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
	City    string `gorm:"type:varchar(100)"`
	Remarks string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		Address:       m.Address,
		City:          m.City,
		Remarks:       m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *partner.Vendor) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.IsActive = v.IsActive
	m.Name = v.Name
	m.Email = v.Email
	m.Phone = v.Phone
	m.Address = v.Address
	m.City = v.City
	m.Remarks = v.Remarks
}

// VendorModelFromDomain creates a new persistence model from domain Vendor
func VendorModelFromDomain(v *partner.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}

// WarehouseModel is the persistence model for a warehouse.
type WarehouseModel struct {
	BaseModel
	SoftDeleteModel
	Name     string `gorm:"type:varchar(255);not null"`
	Location string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *partner.Warehouse {
	return &partner.Warehouse{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		Name:          m.Name,
		Location:      m.Location,
	}
}

// FromDomain populates the persistence model from a domain Warehouse
func (m *WarehouseModel) FromDomain(w *partner.Warehouse) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.IsActive = w.IsActive
	m.Name = w.Name
	m.Location = w.Location
}

// WarehouseModelFromDomain creates a new persistence model from domain Warehouse
func WarehouseModelFromDomain(w *partner.Warehouse) *WarehouseModel {
	m := &WarehouseModel{}
	m.FromDomain(w)
	return m
}
