package trade

import (
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
)

// PurchaseStatus represents the status of a purchase transaction
type PurchaseStatus string

const (
	PurchaseStatusDraft      PurchaseStatus = "DRAFT"
	PurchaseStatusConfirmed  PurchaseStatus = "CONFIRMED"
	PurchaseStatusProcessing PurchaseStatus = "PROCESSING"
	PurchaseStatusReceived   PurchaseStatus = "RECEIVED"
	PurchaseStatusCompleted  PurchaseStatus = "COMPLETED"
	PurchaseStatusCancelled  PurchaseStatus = "CANCELLED"
)

// Operation is a lifecycle command applied to a purchase transaction
type Operation string

const (
	OperationConfirm         Operation = "confirm"
	OperationStartProcessing Operation = "start_processing"
	OperationMarkReceived    Operation = "mark_received"
	OperationComplete        Operation = "complete"
	OperationCancel          Operation = "cancel"
)

// statusRules is everything a status allows
type statusRules struct {
	editable    bool
	cancellable bool
	next        map[Operation]PurchaseStatus
}

var statusTable = map[PurchaseStatus]statusRules{
	PurchaseStatusDraft: {
		editable:    true,
		cancellable: true,
		next: map[Operation]PurchaseStatus{
			OperationConfirm: PurchaseStatusConfirmed,
			OperationCancel:  PurchaseStatusCancelled,
		},
	},
	PurchaseStatusConfirmed: {
		editable:    true,
		cancellable: true,
		next: map[Operation]PurchaseStatus{
			OperationStartProcessing: PurchaseStatusProcessing,
			OperationCancel:          PurchaseStatusCancelled,
		},
	},
	PurchaseStatusProcessing: {
		cancellable: true,
		next: map[Operation]PurchaseStatus{
			OperationMarkReceived: PurchaseStatusReceived,
			OperationCancel:       PurchaseStatusCancelled,
		},
	},
	PurchaseStatusReceived: {
		cancellable: true,
		next: map[Operation]PurchaseStatus{
			OperationComplete: PurchaseStatusCompleted,
			OperationCancel:   PurchaseStatusCancelled,
		},
	},
	PurchaseStatusCompleted: {},
	// Cancelled transactions may still be soft deleted.
	PurchaseStatusCancelled: {cancellable: true},
}

// AllPurchaseStatuses lists every status in lifecycle order
var AllPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusDraft,
	PurchaseStatusConfirmed,
	PurchaseStatusProcessing,
	PurchaseStatusReceived,
	PurchaseStatusCompleted,
	PurchaseStatusCancelled,
}

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	_, ok := statusTable[s]
	return ok
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// IsEditable reports whether header fields and items may change
func (s PurchaseStatus) IsEditable() bool {
	return statusTable[s].editable
}

// CanAddItems reports whether new line items may be attached
func (s PurchaseStatus) CanAddItems() bool {
	return statusTable[s].editable
}

// IsCancellable reports whether the transaction may be cancelled or soft deleted
func (s PurchaseStatus) IsCancellable() bool {
	return statusTable[s].cancellable
}

// Next returns the status reached by applying op, if op is allowed
func (s PurchaseStatus) Next(op Operation) (PurchaseStatus, bool) {
	next, ok := statusTable[s].next[op]
	return next, ok
}

// AllowedOperations lists the operations valid in this status
func (s PurchaseStatus) AllowedOperations() []Operation {
	ops := make([]Operation, 0, len(statusTable[s].next))
	for _, op := range AllOperations {
		if _, ok := statusTable[s].next[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// AllOperations lists every lifecycle operation
var AllOperations = []Operation{
	OperationConfirm,
	OperationStartProcessing,
	OperationMarkReceived,
	OperationComplete,
	OperationCancel,
}

// IsValid checks if the operation is known
func (o Operation) IsValid() bool {
	for _, op := range AllOperations {
		if op == o {
			return true
		}
	}
	return false
}

// String returns the string representation of Operation
func (o Operation) String() string {
	return string(o)
}

// ParsePurchaseStatus parses a status name case-insensitively
func ParsePurchaseStatus(raw string) (PurchaseStatus, error) {
	s := PurchaseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewValidationError("status", "Invalid status: "+raw)
	}
	return s, nil
}
