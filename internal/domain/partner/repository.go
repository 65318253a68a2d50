package partner

import (
	"context"

	"github.com/google/uuid"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds an active vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error
}

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	// FindByID finds an active warehouse by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error
}
