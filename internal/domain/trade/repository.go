package trade

import (
	"context"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseTransactionFilter narrows transaction listings
type PurchaseTransactionFilter struct {
	shared.Filter
	VendorID            *uuid.UUID
	Status              *PurchaseStatus
	DateFrom            *time.Time
	DateTo              *time.Time
	PurchaseOrderNumber string
}

// PurchaseStatistics summarizes active transactions
type PurchaseStatistics struct {
	TotalTransactions  int64
	TotalAmount        decimal.Decimal
	RecentTransactions int64
	RecentAmount       decimal.Decimal
	ByStatus           map[PurchaseStatus]int64
}

// PurchaseTransactionRepository defines read access to purchase transactions.
// Only active transactions are returned.
type PurchaseTransactionRepository interface {
	// FindByID finds a transaction by its internal ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseTransaction, error)

	// FindByTransactionID finds a transaction by its sequence allocated ID
	FindByTransactionID(ctx context.Context, transactionID string) (*PurchaseTransaction, error)

	// FindAll lists transactions matching the filter
	FindAll(ctx context.Context, filter PurchaseTransactionFilter) ([]PurchaseTransaction, error)

	// Count counts transactions matching the filter, ignoring pagination
	Count(ctx context.Context, filter PurchaseTransactionFilter) (int64, error)

	// Search matches query case-insensitively against transaction ID, PO number and remarks
	Search(ctx context.Context, query string, vendorID *uuid.UUID, status *PurchaseStatus, limit int) ([]PurchaseTransaction, error)

	// Statistics aggregates totals; recent covers transactions dated on or after since
	Statistics(ctx context.Context, since time.Time) (*PurchaseStatistics, error)
}

// PurchaseTransactionItemRepository defines read access to line items.
// Only active items are returned.
type PurchaseTransactionItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseTransactionItem, error)

	// FindByTransaction lists the items of a transaction
	FindByTransaction(ctx context.Context, transactionID uuid.UUID, filter shared.Filter) ([]PurchaseTransactionItem, error)

	// CountByTransaction counts the items of a transaction
	CountByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error)

	// FindAllByTransaction returns every item of a transaction
	FindAllByTransaction(ctx context.Context, transactionID uuid.UUID) ([]PurchaseTransactionItem, error)

	// FindBySerialNumber finds the item carrying serial
	FindBySerialNumber(ctx context.Context, serial string) (*PurchaseTransactionItem, error)

	// FindWithWarranty lists items that carry warranty information
	FindWithWarranty(ctx context.Context, filter shared.Filter) ([]PurchaseTransactionItem, error)

	// CountWithWarranty counts items that carry warranty information
	CountWithWarranty(ctx context.Context) (int64, error)
}

// ItemWriter writes line items inside an aggregate unit of work
type ItemWriter interface {
	// FindByID finds an active item of the aggregate being mutated
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseTransactionItem, error)

	// ExistingSerialNumbers returns which of serials are already held by an active item anywhere
	ExistingSerialNumbers(ctx context.Context, serials []string) ([]string, error)

	// Insert persists new items and claims their serial numbers
	Insert(ctx context.Context, items []*PurchaseTransactionItem) error

	// Update persists changes to an existing item
	Update(ctx context.Context, item *PurchaseTransactionItem) error

	// SoftDelete deactivates an item and releases its serial numbers
	SoftDelete(ctx context.Context, item *PurchaseTransactionItem) error
}

// MutateFunc changes an aggregate inside its unit of work. Returning an error
// rolls everything back.
type MutateFunc func(ctx context.Context, txn *PurchaseTransaction, items ItemWriter) error

// PurchaseAggregateStore persists the transaction and its items as one
// consistency boundary. After fn succeeds the totals are reconciled from the
// live items and the header is saved in the same database transaction.
type PurchaseAggregateStore interface {
	// Create inserts txn and then runs fn. A duplicate transaction ID fails with a conflict.
	Create(ctx context.Context, txn *PurchaseTransaction, fn MutateFunc) (*PurchaseTransaction, error)

	// Mutate locks the active transaction row, runs fn against it, reconciles and saves.
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*PurchaseTransaction, error)
}
