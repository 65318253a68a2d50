package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseTransactionModel is the persistence model for the PurchaseTransaction aggregate root.
type PurchaseTransactionModel struct {
	AggregateModel
	TransactionID       string               `gorm:"type:varchar(255);not null;uniqueIndex:uk_purchase_transactions_transaction_id"`
	TransactionDate     time.Time            `gorm:"not null;index"`
	VendorID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status              trade.PurchaseStatus `gorm:"type:varchar(20);not null;index"`
	TotalAmount         decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	PurchaseOrderNumber string               `gorm:"type:varchar(255);index"`
	Remarks             string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseTransactionModel) TableName() string {
	return "purchase_transactions"
}

// ToDomain converts the persistence model to a domain PurchaseTransaction
func (m *PurchaseTransactionModel) ToDomain() *trade.PurchaseTransaction {
	return &trade.PurchaseTransaction{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		TransactionID:       m.TransactionID,
		TransactionDate:     m.TransactionDate,
		VendorID:            m.VendorID,
		Status:              m.Status,
		TotalAmount:         m.TotalAmount,
		GrandTotal:          m.GrandTotal,
		PurchaseOrderNumber: m.PurchaseOrderNumber,
		Remarks:             m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain PurchaseTransaction
func (m *PurchaseTransactionModel) FromDomain(t *trade.PurchaseTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TransactionID = t.TransactionID
	m.TransactionDate = t.TransactionDate
	m.VendorID = t.VendorID
	m.Status = t.Status
	m.TotalAmount = t.TotalAmount
	m.GrandTotal = t.GrandTotal
	m.PurchaseOrderNumber = t.PurchaseOrderNumber
	m.Remarks = t.Remarks
}

// PurchaseTransactionModelFromDomain creates a new persistence model from domain PurchaseTransaction
func PurchaseTransactionModelFromDomain(t *trade.PurchaseTransaction) *PurchaseTransactionModel {
	m := &PurchaseTransactionModel{}
	m.FromDomain(t)
	return m
}

// SerialNumbers is a JSON encoded list of serial numbers
type SerialNumbers []string

// Value implements driver.Valuer for GORM to write to JSONB
func (s SerialNumbers) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (s *SerialNumbers) Scan(value interface{}) error {
	if value == nil {
		*s = SerialNumbers{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan SerialNumbers: unsupported type")
	}

	if len(bytes) == 0 {
		*s = SerialNumbers{}
		return nil
	}
	return json.Unmarshal(bytes, (*[]string)(s))
}

// PurchaseTransactionItemModel is the persistence model for a purchase line item.
type PurchaseTransactionItemModel struct {
	BaseModel
	SoftDeleteModel
	TransactionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID        *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity           int             `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SerialNumbers      SerialNumbers   `gorm:"column:serial_number;type:jsonb"`
	Remarks            string          `gorm:"type:text"`
	WarrantyPeriodType *string         `gorm:"type:varchar(10);index"`
	WarrantyPeriod     *int
}

// TableName returns the table name for GORM
func (PurchaseTransactionItemModel) TableName() string {
	return "purchase_transaction_items"
}

// ToDomain converts the persistence model to a domain PurchaseTransactionItem
func (m *PurchaseTransactionItemModel) ToDomain() *trade.PurchaseTransactionItem {
	item := &trade.PurchaseTransactionItem{
		BaseEntity:      m.BaseModel.ToDomain(),
		SoftDeletable:   shared.SoftDeletable{IsActive: m.IsActive},
		TransactionID:   m.TransactionID,
		InventoryItemID: m.InventoryItemID,
		WarehouseID:     m.WarehouseID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Discount:        m.Discount,
		TaxAmount:       m.TaxAmount,
		TotalPrice:      m.TotalPrice,
		SerialNumbers:   []string(m.SerialNumbers),
		Remarks:         m.Remarks,
		WarrantyPeriod:  m.WarrantyPeriod,
	}
	if item.SerialNumbers == nil {
		item.SerialNumbers = []string{}
	}
	if m.WarrantyPeriodType != nil {
		item.WarrantyPeriodType = trade.WarrantyPeriodType(*m.WarrantyPeriodType)
	}
	return item
}

// FromDomain populates the persistence model from a domain PurchaseTransactionItem
func (m *PurchaseTransactionItemModel) FromDomain(i *trade.PurchaseTransactionItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.IsActive = i.IsActive
	m.TransactionID = i.TransactionID
	m.InventoryItemID = i.InventoryItemID
	m.WarehouseID = i.WarehouseID
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Discount = i.Discount
	m.TaxAmount = i.TaxAmount
	m.TotalPrice = i.TotalPrice
	m.SerialNumbers = SerialNumbers(i.SerialNumbers)
	m.Remarks = i.Remarks
	m.WarrantyPeriod = i.WarrantyPeriod
	m.WarrantyPeriodType = nil
	if i.WarrantyPeriodType != "" {
		wt := string(i.WarrantyPeriodType)
		m.WarrantyPeriodType = &wt
	}
}

// PurchaseTransactionItemModelFromDomain creates a new persistence model from domain PurchaseTransactionItem
func PurchaseTransactionItemModelFromDomain(i *trade.PurchaseTransactionItem) *PurchaseTransactionItemModel {
	m := &PurchaseTransactionItemModel{}
	m.FromDomain(i)
	return m
}

// PurchaseItemSerialModel claims a serial number for one active line item.
// The primary key enforces global uniqueness; rows are removed when the item
// is soft deleted.
type PurchaseItemSerialModel struct {
	SerialNumber  string    `gorm:"type:varchar(255);primaryKey"`
	ItemID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemSerialModel) TableName() string {
	return "purchase_item_serials"
}

// SerialClaimsFor builds the serial claim rows of an item
func SerialClaimsFor(i *trade.PurchaseTransactionItem) []PurchaseItemSerialModel {
	claims := make([]PurchaseItemSerialModel, 0, len(i.SerialNumbers))
	for _, sn := range i.SerialNumbers {
		claims = append(claims, PurchaseItemSerialModel{
			SerialNumber:  sn,
			ItemID:        i.ID,
			TransactionID: i.TransactionID,
			CreatedAt:     i.CreatedAt,
		})
	}
	return claims
}

// AllModels returns every model managed by this package, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&SequenceModel{},
		&VendorModel{},
		&WarehouseModel{},
		&InventoryItemModel{},
		&PurchaseTransactionModel{},
		&PurchaseTransactionItemModel{},
		&PurchaseItemSerialModel{},
	}
}
