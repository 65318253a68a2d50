package catalog

import (
	"context"

	"github.com/google/uuid"
)

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	// FindByID finds an active inventory item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByIDs finds active inventory items by IDs, missing ones are omitted
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]InventoryItem, error)

	// Save creates or updates an inventory item
	Save(ctx context.Context, item *InventoryItem) error
}
