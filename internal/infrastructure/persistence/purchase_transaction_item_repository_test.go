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

func newWarrantyItem(t *testing.T, txn *trade.PurchaseTransaction, period int) *trade.PurchaseTransactionItem {
	t.Helper()
	item, err := trade.NewPurchaseTransactionItem(txn.ID, trade.ItemInput{
		InventoryItemID:    uuid.New(),
		Quantity:           1,
		UnitPrice:          decimal.NewFromInt(500),
		Discount:           decimal.NewFromInt(20),
		TaxAmount:          decimal.RequireFromString("12.50"),
		SerialNumbers:      []string{"WAR-1"},
		Remarks:            "with warranty",
		WarrantyPeriodType: trade.WarrantyPeriodMonths,
		WarrantyPeriod:     &period,
	})
	require.NoError(t, err)
	return item
}

func TestGormPurchaseTransactionItemRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewGormPurchaseAggregateStore(db)
	repo := NewGormPurchaseTransactionItemRepository(db)

	txn := newTestTransaction(t, "PUR-AAA0002", time.Now())
	warranty := newWarrantyItem(t, txn, 12)
	plain := newTestItem(t, txn, 4, "2.50")
	_, err := store.Create(ctx, txn, insertItems(warranty, plain))
	require.NoError(t, err)

	other := newTestTransaction(t, "PUR-AAA0003", time.Now())
	_, err = store.Create(ctx, other, insertItems(newTestItem(t, other, 1, "1")))
	require.NoError(t, err)

	t.Run("FindByID round trips every field", func(t *testing.T) {
		item, err := repo.FindByID(ctx, warranty.ID)
		require.NoError(t, err)

		assert.Equal(t, txn.ID, item.TransactionID)
		assert.Equal(t, warranty.InventoryItemID, item.InventoryItemID)
		assert.Equal(t, 1, item.Quantity)
		assert.True(t, decimal.RequireFromString("492.50").Equal(item.TotalPrice), item.TotalPrice.String())
		assert.Equal(t, []string{"WAR-1"}, item.SerialNumbers)
		assert.Equal(t, trade.WarrantyPeriodMonths, item.WarrantyPeriodType)
		require.NotNil(t, item.WarrantyPeriod)
		assert.Equal(t, 12, *item.WarrantyPeriod)
		assert.Equal(t, "with warranty", item.Remarks)
	})

	t.Run("items without serials come back with an empty list", func(t *testing.T) {
		item, err := repo.FindByID(ctx, plain.ID)
		require.NoError(t, err)
		assert.NotNil(t, item.SerialNumbers)
		assert.Empty(t, item.SerialNumbers)
		assert.Empty(t, item.WarrantyPeriodType)
	})

	t.Run("FindByTransaction is scoped and counted", func(t *testing.T) {
		items, err := repo.FindByTransaction(ctx, txn.ID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{warranty.ID, plain.ID},
			lo.Map(items, func(i trade.PurchaseTransactionItem, _ int) uuid.UUID { return i.ID }))

		count, err := repo.CountByTransaction(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		page, err := repo.FindByTransaction(ctx, txn.ID, shared.Filter{Page: 1, PageSize: 1, OrderBy: "total_price", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, plain.ID, page[0].ID)

		all, err := repo.FindAllByTransaction(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("FindBySerialNumber", func(t *testing.T) {
		item, err := repo.FindBySerialNumber(ctx, " WAR-1 ")
		require.NoError(t, err)
		assert.Equal(t, warranty.ID, item.ID)

		_, err = repo.FindBySerialNumber(ctx, "MISSING")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("warranty listings", func(t *testing.T) {
		items, err := repo.FindWithWarranty(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, warranty.ID, items[0].ID)

		count, err := repo.CountWithWarranty(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
