package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory SQLite database on a single connection
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestTransaction(t *testing.T, transactionID string, date time.Time) *trade.PurchaseTransaction {
	t.Helper()
	txn, err := trade.NewPurchaseTransaction(transactionID, uuid.New(), date, "", "")
	require.NoError(t, err)
	return txn
}

func newTestItem(t *testing.T, txn *trade.PurchaseTransaction, qty int, unitPrice string, serials ...string) *trade.PurchaseTransactionItem {
	t.Helper()
	item, err := trade.NewPurchaseTransactionItem(txn.ID, trade.ItemInput{
		InventoryItemID: uuid.New(),
		Quantity:        qty,
		UnitPrice:       decimal.RequireFromString(unitPrice),
		SerialNumbers:   serials,
	})
	require.NoError(t, err)
	return item
}

func insertItems(items ...*trade.PurchaseTransactionItem) trade.MutateFunc {
	return func(ctx context.Context, _ *trade.PurchaseTransaction, w trade.ItemWriter) error {
		return w.Insert(ctx, items)
	}
}
