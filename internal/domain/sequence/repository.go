package sequence

import (
	"context"

	"github.com/erp/purchasing/internal/domain/shared"
)

// Repository defines persistence for sequences
type Repository interface {
	// FindByPrefix finds a sequence by its normalized prefix
	FindByPrefix(ctx context.Context, prefix string) (*Sequence, error)

	// FindAll lists sequences ordered by prefix
	FindAll(ctx context.Context, filter shared.Filter, activeOnly bool) ([]Sequence, error)

	// Count counts sequences
	Count(ctx context.Context, activeOnly bool) (int64, error)

	// Modify applies fn to the row for prefix while holding an exclusive lock on it
	// and persists the result. When create is true a missing row is inserted first
	// with the initial identifier; concurrent creators converge on one row.
	// When create is false a missing row yields shared.ErrNotFound.
	// An error from fn aborts without writing.
	Modify(ctx context.Context, prefix string, create bool, fn func(seq *Sequence) error) (*Sequence, error)
}
