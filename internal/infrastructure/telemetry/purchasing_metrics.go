package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are created without a meter
var ErrMeterNil = &MetricsError{Op: "NewPurchasingMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failure while building metric instruments
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// PurchasingMetrics records purchasing activity: allocated identifiers,
// created transactions and their amounts, status transitions and item writes.
type PurchasingMetrics struct {
	sequenceAllocated *Counter
	sequenceSelfHeal  *Counter
	txnCreated        *Counter
	txnAmount         *FloatCounter
	transitions       *Counter
	itemMutations     *Counter
	aggregateWrite    *Histogram
}

// NewPurchasingMetrics creates the purchasing instruments on meter.
func NewPurchasingMetrics(meter metric.Meter) (*PurchasingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	pm := &PurchasingMetrics{}
	var err error

	if pm.sequenceAllocated, err = NewCounter(meter,
		"purchasing_sequence_ids_allocated_total",
		"Total number of identifiers issued by the sequence allocator",
		"{ids}",
	); err != nil {
		return nil, err
	}
	if pm.sequenceSelfHeal, err = NewCounter(meter,
		"purchasing_sequence_self_heal_total",
		"Total number of corrupted sequence states that were reset",
		"{resets}",
	); err != nil {
		return nil, err
	}
	if pm.txnCreated, err = NewCounter(meter,
		"purchasing_transactions_created_total",
		"Total number of purchase transactions created",
		"{transactions}",
	); err != nil {
		return nil, err
	}
	if pm.txnAmount, err = NewFloatCounter(meter,
		"purchasing_transaction_amount_total",
		"Sum of grand totals of created purchase transactions",
		"{currency}",
	); err != nil {
		return nil, err
	}
	if pm.transitions, err = NewCounter(meter,
		"purchasing_transaction_transitions_total",
		"Total number of purchase transaction status transitions",
		"{transitions}",
	); err != nil {
		return nil, err
	}
	if pm.itemMutations, err = NewCounter(meter,
		"purchasing_item_mutations_total",
		"Total number of line items created, updated or deleted",
		"{items}",
	); err != nil {
		return nil, err
	}
	if pm.aggregateWrite, err = NewHistogram(meter, HistogramOpts{
		Name:        "purchasing_aggregate_write_duration_seconds",
		Description: "Duration of purchase aggregate writes including totals reconciliation",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordSequenceAllocation counts count identifiers issued for prefix
func (pm *PurchasingMetrics) RecordSequenceAllocation(ctx context.Context, prefix string, count int) {
	pm.sequenceAllocated.Add(ctx, int64(count), AttrPrefix.String(prefix))
}

// RecordSequenceSelfHeal counts a reset of a corrupted sequence state
func (pm *PurchasingMetrics) RecordSequenceSelfHeal(ctx context.Context, prefix string) {
	pm.sequenceSelfHeal.Inc(ctx, AttrPrefix.String(prefix))
}

// RecordTransactionCreated counts a created transaction and its grand total
func (pm *PurchasingMetrics) RecordTransactionCreated(ctx context.Context, amount decimal.Decimal) {
	pm.txnCreated.Inc(ctx)
	pm.txnAmount.Add(ctx, amount.InexactFloat64())
}

// RecordTransition counts a status transition such as "confirm" or "cancel"
func (pm *PurchasingMetrics) RecordTransition(ctx context.Context, op string) {
	pm.transitions.Inc(ctx, AttrOperation.String(op))
}

// RecordItemMutation counts count line items touched by op
func (pm *PurchasingMetrics) RecordItemMutation(ctx context.Context, op string, count int) {
	pm.itemMutations.Add(ctx, int64(count), AttrOperation.String(op))
}

// RecordAggregateWrite records how long an aggregate write took
func (pm *PurchasingMetrics) RecordAggregateWrite(ctx context.Context, op string, d time.Duration) {
	pm.aggregateWrite.RecordDuration(ctx, d, AttrOperation.String(op))
}
