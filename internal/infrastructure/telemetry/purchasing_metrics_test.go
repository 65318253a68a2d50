package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewPurchasingMetrics_NilMeter(t *testing.T) {
	pm, err := NewPurchasingMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewPurchasingMetrics: meter cannot be nil", err.Error())
}

func TestPurchasingMetrics_Noop(t *testing.T) {
	pm, err := NewPurchasingMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	pm.RecordSequenceAllocation(ctx, "PUR", 3)
	pm.RecordSequenceSelfHeal(ctx, "PUR")
	pm.RecordTransactionCreated(ctx, decimal.RequireFromString("10.50"))
	pm.RecordTransition(ctx, "confirm")
	pm.RecordItemMutation(ctx, "create", 2)
	pm.RecordAggregateWrite(ctx, "item_create", time.Millisecond)
}

func TestPurchasingMetrics_Recorded(t *testing.T) {
	provider, reader := newManualMeter(t)
	pm, err := NewPurchasingMetrics(provider.Meter("purchasing"))
	require.NoError(t, err)

	ctx := context.Background()
	pm.RecordSequenceAllocation(ctx, "PUR", 3)
	pm.RecordSequenceAllocation(ctx, "INV", 2)
	pm.RecordSequenceSelfHeal(ctx, "PUR")
	pm.RecordTransactionCreated(ctx, decimal.RequireFromString("100.25"))
	pm.RecordTransactionCreated(ctx, decimal.RequireFromString("50.25"))
	pm.RecordTransition(ctx, "confirm")
	pm.RecordItemMutation(ctx, "create", 4)
	pm.RecordAggregateWrite(ctx, "transaction_create", 20*time.Millisecond)

	metrics := collect(t, reader)

	assert.EqualValues(t, 5, sumInt64(t, metrics["purchasing_sequence_ids_allocated_total"]))
	assert.EqualValues(t, 1, sumInt64(t, metrics["purchasing_sequence_self_heal_total"]))
	assert.EqualValues(t, 2, sumInt64(t, metrics["purchasing_transactions_created_total"]))
	assert.EqualValues(t, 1, sumInt64(t, metrics["purchasing_transaction_transitions_total"]))
	assert.EqualValues(t, 4, sumInt64(t, metrics["purchasing_item_mutations_total"]))

	amount, ok := metrics["purchasing_transaction_amount_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 150.50, amount.DataPoints[0].Value, 0.0001)

	allocated := metrics["purchasing_sequence_ids_allocated_total"].Data.(metricdata.Sum[int64])
	byPrefix := map[string]int64{}
	for _, dp := range allocated.DataPoints {
		prefix, _ := dp.Attributes.Value(attribute.Key("sequence.prefix"))
		byPrefix[prefix.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"PUR": 3, "INV": 2}, byPrefix)

	writes, ok := metrics["purchasing_aggregate_write_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, writes.DataPoints, 1)
	assert.EqualValues(t, 1, writes.DataPoints[0].Count)
}
