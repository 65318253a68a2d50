package partner

import (
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
)

// Warehouse is a storage location a purchased item may be received into
type Warehouse struct {
	shared.BaseEntity
	shared.SoftDeletable
	Name     string
	Location string
}

// NewWarehouse creates an active warehouse
func NewWarehouse(name, location string) (*Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "Warehouse name cannot be empty")
	}
	return &Warehouse{
		BaseEntity:    shared.NewBaseEntity(),
		SoftDeletable: shared.SoftDeletable{IsActive: true},
		Name:          name,
		Location:      strings.TrimSpace(location),
	}, nil
}
