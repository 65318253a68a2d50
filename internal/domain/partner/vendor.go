package partner

import (
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
)

// Vendor is a supplier that purchase transactions are raised against.
// Vendor master data is maintained elsewhere; this context only reads it.
type Vendor struct {
	shared.BaseEntity
	shared.SoftDeletable
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	Remarks string
}

// NewVendor creates an active vendor
func NewVendor(name string) (*Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "Vendor name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewValidationError("name", "Vendor name cannot exceed 255 characters")
	}
	return &Vendor{
		BaseEntity:    shared.NewBaseEntity(),
		SoftDeletable: shared.SoftDeletable{IsActive: true},
		Name:          name,
	}, nil
}
