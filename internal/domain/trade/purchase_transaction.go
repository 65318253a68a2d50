package trade

import (
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	// TransactionPrefix is the sequence prefix of purchase transaction ids
	TransactionPrefix = "PUR"

	// MaxTransactionIDLength bounds the externally visible id
	MaxTransactionIDLength = 255

	maxPurchaseOrderNumberLength = 255
)

// PurchaseTransaction is the aggregate root of a purchase and its line items
type PurchaseTransaction struct {
	shared.BaseAggregateRoot
	TransactionID       string
	TransactionDate     time.Time
	VendorID            uuid.UUID
	Status              PurchaseStatus
	TotalAmount         decimal.Decimal
	GrandTotal          decimal.Decimal
	PurchaseOrderNumber string
	Remarks             string
}

// NewPurchaseTransaction creates a DRAFT transaction with zero totals.
// The vendor reference must already be validated by the caller.
func NewPurchaseTransaction(transactionID string, vendorID uuid.UUID, transactionDate time.Time, poNumber, remarks string) (*PurchaseTransaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, shared.NewValidationError("transaction_id", "Transaction ID cannot be empty")
	}
	if len(transactionID) > MaxTransactionIDLength {
		return nil, shared.NewValidationError("transaction_id", "Transaction ID cannot exceed 255 characters")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor_id", "Vendor ID cannot be empty")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewValidationError("transaction_date", "Transaction date is required")
	}
	poNumber = strings.TrimSpace(poNumber)
	if len(poNumber) > maxPurchaseOrderNumberLength {
		return nil, shared.NewValidationError("purchase_order_number", "Purchase order number cannot exceed 255 characters")
	}

	return &PurchaseTransaction{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		TransactionID:       transactionID,
		TransactionDate:     transactionDate,
		VendorID:            vendorID,
		Status:              PurchaseStatusDraft,
		TotalAmount:         decimal.Zero,
		GrandTotal:          decimal.Zero,
		PurchaseOrderNumber: poNumber,
		Remarks:             remarks,
	}, nil
}

// IsEditable returns true while header fields and items may change
func (t *PurchaseTransaction) IsEditable() bool {
	return t.Status.IsEditable()
}

// CanAddItems returns true while new items may be attached
func (t *PurchaseTransaction) CanAddItems() bool {
	return t.Status.CanAddItems()
}

// IsCancellable returns true unless the transaction is completed
func (t *PurchaseTransaction) IsCancellable() bool {
	return t.Status.IsCancellable()
}

// EnsureEditable fails with NotEditable unless the transaction is editable
func (t *PurchaseTransaction) EnsureEditable() error {
	if !t.IsEditable() {
		return shared.NewNotEditableError(t.Status.String()).WithDetail("transaction_id", t.TransactionID)
	}
	return nil
}

// EnsureCanAddItems fails with NotEditable unless items may be added
func (t *PurchaseTransaction) EnsureCanAddItems() error {
	if !t.CanAddItems() {
		return shared.NewNotEditableError(t.Status.String()).WithDetail("transaction_id", t.TransactionID)
	}
	return nil
}

// Transition applies op. An operation not allowed from the current status
// fails with InvalidStateTransition and leaves the transaction unchanged.
func (t *PurchaseTransaction) Transition(op Operation) error {
	next, ok := t.Status.Next(op)
	if !ok {
		return shared.NewInvalidStateTransitionError(op.String(), t.Status.String()).
			WithDetail("transaction_id", t.TransactionID)
	}
	t.Status = next
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Confirm moves DRAFT to CONFIRMED
func (t *PurchaseTransaction) Confirm() error {
	return t.Transition(OperationConfirm)
}

// StartProcessing moves CONFIRMED to PROCESSING
func (t *PurchaseTransaction) StartProcessing() error {
	return t.Transition(OperationStartProcessing)
}

// MarkReceived moves PROCESSING to RECEIVED
func (t *PurchaseTransaction) MarkReceived() error {
	return t.Transition(OperationMarkReceived)
}

// Complete moves RECEIVED to COMPLETED
func (t *PurchaseTransaction) Complete() error {
	return t.Transition(OperationComplete)
}

// Cancel moves any non-terminal status to CANCELLED
func (t *PurchaseTransaction) Cancel() error {
	return t.Transition(OperationCancel)
}

// HeaderUpdate carries the header fields to change; nil fields are kept
type HeaderUpdate struct {
	VendorID            *uuid.UUID
	TransactionDate     *time.Time
	PurchaseOrderNumber *string
	Remarks             *string
}

// IsEmpty reports whether the update changes nothing
func (u HeaderUpdate) IsEmpty() bool {
	return u.VendorID == nil && u.TransactionDate == nil && u.PurchaseOrderNumber == nil && u.Remarks == nil
}

// UpdateHeader applies u while the transaction is editable. An empty update
// leaves the version untouched.
func (t *PurchaseTransaction) UpdateHeader(u HeaderUpdate) error {
	if err := t.EnsureEditable(); err != nil {
		return err
	}
	if u.IsEmpty() {
		return nil
	}
	if u.VendorID != nil && *u.VendorID == uuid.Nil {
		return shared.NewValidationError("vendor_id", "Vendor ID cannot be empty")
	}
	if u.TransactionDate != nil && u.TransactionDate.IsZero() {
		return shared.NewValidationError("transaction_date", "Transaction date is required")
	}
	if u.PurchaseOrderNumber != nil && len(strings.TrimSpace(*u.PurchaseOrderNumber)) > maxPurchaseOrderNumberLength {
		return shared.NewValidationError("purchase_order_number", "Purchase order number cannot exceed 255 characters")
	}

	if u.VendorID != nil {
		t.VendorID = *u.VendorID
	}
	if u.TransactionDate != nil {
		t.TransactionDate = *u.TransactionDate
	}
	if u.PurchaseOrderNumber != nil {
		t.PurchaseOrderNumber = strings.TrimSpace(*u.PurchaseOrderNumber)
	}
	if u.Remarks != nil {
		t.Remarks = *u.Remarks
	}
	t.Touch()
	t.IncrementVersion()
	return nil
}

// MarkDeleted soft deletes the transaction. Completed transactions fail with NotCancellable.
func (t *PurchaseTransaction) MarkDeleted() error {
	if !t.IsCancellable() {
		return shared.NewNotCancellableError(t.Status.String()).WithDetail("transaction_id", t.TransactionID)
	}
	t.Deactivate()
	t.Touch()
	t.IncrementVersion()
	return nil
}

// ReconcileTotals recomputes the totals from scratch over the live items of
// this transaction. Items of other transactions and inactive items are ignored.
func (t *PurchaseTransaction) ReconcileTotals(items []PurchaseTransactionItem) {
	live := lo.Filter(items, func(item PurchaseTransactionItem, _ int) bool {
		return item.IsActive && item.TransactionID == t.ID
	})
	total := lo.Reduce(live, func(sum decimal.Decimal, item PurchaseTransactionItem, _ int) decimal.Decimal {
		return sum.Add(item.TotalPrice)
	}, decimal.Zero)

	t.TotalAmount = total
	t.GrandTotal = total
	t.Touch()
}
