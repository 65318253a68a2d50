package catalog

import (
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
)

// TrackingType is the serial number discipline of an inventory item
type TrackingType string

const (
	// TrackingTypeIndividual items carry one serial number per unit
	TrackingTypeIndividual TrackingType = "INDIVIDUAL"
	// TrackingTypeBulk items carry at most one lot or batch code
	TrackingTypeBulk TrackingType = "BULK"
)

// IsValid checks if the tracking type is known
func (t TrackingType) IsValid() bool {
	return t == TrackingTypeIndividual || t == TrackingTypeBulk
}

// String returns the string representation of TrackingType
func (t TrackingType) String() string {
	return string(t)
}

// InventoryItem is the item master record a purchase line refers to
type InventoryItem struct {
	shared.BaseEntity
	shared.SoftDeletable
	SKU          string
	Name         string
	TrackingType TrackingType
}

// NewInventoryItem creates an active inventory item
func NewInventoryItem(sku, name string, tracking TrackingType) (*InventoryItem, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewValidationError("sku", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "Item name cannot be empty")
	}
	if !tracking.IsValid() {
		return nil, shared.NewValidationError("tracking_type", "Tracking type must be BULK or INDIVIDUAL")
	}
	return &InventoryItem{
		BaseEntity:    shared.NewBaseEntity(),
		SoftDeletable: shared.SoftDeletable{IsActive: true},
		SKU:           sku,
		Name:          strings.TrimSpace(name),
		TrackingType:  tracking,
	}, nil
}
