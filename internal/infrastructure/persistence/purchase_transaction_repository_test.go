package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionFixture struct {
	repo    *GormPurchaseTransactionRepository
	store   *GormPurchaseAggregateStore
	vendorA uuid.UUID
	vendorB uuid.UUID
	base    time.Time
}

func newTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()
	db := newTestDB(t)
	return &transactionFixture{
		repo:    NewGormPurchaseTransactionRepository(db),
		store:   NewGormPurchaseAggregateStore(db),
		vendorA: uuid.New(),
		vendorB: uuid.New(),
		base:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *transactionFixture) create(t *testing.T, id string, vendor uuid.UUID, daysAfterBase int, po, remarks, unitPrice string) *trade.PurchaseTransaction {
	t.Helper()
	txn, err := trade.NewPurchaseTransaction(id, vendor, f.base.AddDate(0, 0, daysAfterBase), po, remarks)
	require.NoError(t, err)
	_, err = f.store.Create(context.Background(), txn, insertItems(newTestItem(t, txn, 1, unitPrice)))
	require.NoError(t, err)
	return txn
}

func transactionIDs(txns []trade.PurchaseTransaction) []string {
	return lo.Map(txns, func(t trade.PurchaseTransaction, _ int) string { return t.TransactionID })
}

func TestGormPurchaseTransactionRepository_Find(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	txn := f.create(t, "PUR-AAA0002", f.vendorA, 0, "PO-1", "", "10")

	byID, err := f.repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "PUR-AAA0002", byID.TransactionID)
	assert.Equal(t, "PO-1", byID.PurchaseOrderNumber)
	assert.Equal(t, f.vendorA, byID.VendorID)

	byTxnID, err := f.repo.FindByTransactionID(ctx, "PUR-AAA0002")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, byTxnID.ID)

	_, err = f.repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.repo.FindByTransactionID(ctx, "PUR-ZZZ9999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseTransactionRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.create(t, "PUR-AAA0002", f.vendorA, 0, "PO-1", "", "10")
	f.create(t, "PUR-AAA0003", f.vendorB, 5, "PO-2", "", "20")
	third := f.create(t, "PUR-AAA0004", f.vendorA, 10, "PO-3", "", "30")

	_, err := f.store.Mutate(ctx, third.ID, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		return txn.Confirm()
	})
	require.NoError(t, err)

	t.Run("defaults to newest transaction date first", func(t *testing.T) {
		txns, err := f.repo.FindAll(ctx, trade.PurchaseTransactionFilter{Filter: shared.Filter{Page: 1, PageSize: 10}})
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0004", "PUR-AAA0003", "PUR-AAA0002"}, transactionIDs(txns))
	})

	t.Run("sort field outside the whitelist falls back", func(t *testing.T) {
		txns, err := f.repo.FindAll(ctx, trade.PurchaseTransactionFilter{
			Filter: shared.Filter{Page: 1, PageSize: 10, OrderBy: "remarks; DROP TABLE x", OrderDir: "asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0002", "PUR-AAA0003", "PUR-AAA0004"}, transactionIDs(txns))
	})

	t.Run("filters by vendor and status", func(t *testing.T) {
		status := trade.PurchaseStatusDraft
		filter := trade.PurchaseTransactionFilter{
			Filter:   shared.Filter{Page: 1, PageSize: 10},
			VendorID: &f.vendorA,
			Status:   &status,
		}
		txns, err := f.repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0002"}, transactionIDs(txns))

		count, err := f.repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("filters by date range and PO number", func(t *testing.T) {
		from := f.base.AddDate(0, 0, 1)
		to := f.base.AddDate(0, 0, 10)
		txns, err := f.repo.FindAll(ctx, trade.PurchaseTransactionFilter{
			Filter:   shared.Filter{Page: 1, PageSize: 10},
			DateFrom: &from,
			DateTo:   &to,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0004", "PUR-AAA0003"}, transactionIDs(txns))

		txns, err = f.repo.FindAll(ctx, trade.PurchaseTransactionFilter{
			Filter:              shared.Filter{Page: 1, PageSize: 10},
			PurchaseOrderNumber: "PO-2",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0003"}, transactionIDs(txns))
	})

	t.Run("paginates", func(t *testing.T) {
		filter := trade.PurchaseTransactionFilter{Filter: shared.Filter{Page: 2, PageSize: 2}}
		txns, err := f.repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0002"}, transactionIDs(txns))

		count, err := f.repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormPurchaseTransactionRepository_Search(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.create(t, "PUR-AAA0002", f.vendorA, 0, "PO-ALPHA", "", "10")
	f.create(t, "PUR-AAA0003", f.vendorB, 1, "", "urgent laptops", "10")
	f.create(t, "PUR-AAA0004", f.vendorA, 2, "", "100% paid", "10")

	t.Run("matches transaction ID case-insensitively", func(t *testing.T) {
		txns, err := f.repo.Search(ctx, "aaa0003", nil, nil, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0003"}, transactionIDs(txns))
	})

	t.Run("matches PO number and remarks", func(t *testing.T) {
		txns, err := f.repo.Search(ctx, "alpha", nil, nil, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0002"}, transactionIDs(txns))

		txns, err = f.repo.Search(ctx, "URGENT", nil, nil, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0003"}, transactionIDs(txns))
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		txns, err := f.repo.Search(ctx, "100%", nil, nil, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0004"}, transactionIDs(txns))
	})

	t.Run("narrows by vendor and limit", func(t *testing.T) {
		txns, err := f.repo.Search(ctx, "PUR", &f.vendorA, nil, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUR-AAA0004", "PUR-AAA0002"}, transactionIDs(txns))

		txns, err = f.repo.Search(ctx, "PUR", nil, nil, 1)
		require.NoError(t, err)
		assert.Len(t, txns, 1)
	})
}

func TestGormPurchaseTransactionRepository_Statistics(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.create(t, "PUR-AAA0002", f.vendorA, 0, "", "", "100")
	f.create(t, "PUR-AAA0003", f.vendorA, 20, "", "", "50.50")
	cancelled := f.create(t, "PUR-AAA0004", f.vendorB, 25, "", "", "25")
	deleted := f.create(t, "PUR-AAA0005", f.vendorB, 25, "", "", "999")

	_, err := f.store.Mutate(ctx, cancelled.ID, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		return txn.Cancel()
	})
	require.NoError(t, err)
	_, err = f.store.Mutate(ctx, deleted.ID, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		return txn.MarkDeleted()
	})
	require.NoError(t, err)

	stats, err := f.repo.Statistics(ctx, f.base.AddDate(0, 0, 15))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalTransactions)
	assert.True(t, decimal.RequireFromString("175.50").Equal(stats.TotalAmount), stats.TotalAmount.String())
	assert.Equal(t, int64(2), stats.RecentTransactions)
	assert.True(t, decimal.RequireFromString("75.50").Equal(stats.RecentAmount), stats.RecentAmount.String())
	assert.Equal(t, map[trade.PurchaseStatus]int64{
		trade.PurchaseStatusDraft:     2,
		trade.PurchaseStatusCancelled: 1,
	}, stats.ByStatus)
}

func TestGormPurchaseTransactionRepository_StatisticsEmpty(t *testing.T) {
	f := newTransactionFixture(t)

	stats, err := f.repo.Statistics(context.Background(), f.base)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTransactions)
	assert.True(t, stats.TotalAmount.IsZero())
	assert.Empty(t, stats.ByStatus)
}
