package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sequenceapp "github.com/erp/purchasing/internal/application/sequence"
	tradeapp "github.com/erp/purchasing/internal/application/trade"
	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/partner"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/cache"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/migration"
	"github.com/erp/purchasing/internal/infrastructure/persistence"
	"github.com/erp/purchasing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testAPI is a full purchasing stack on an in-memory SQLite database
type testAPI struct {
	engine     *gin.Engine
	db         *gorm.DB
	vendor     *partner.Vendor
	warehouse  *partner.Warehouse
	bulkItem   *catalog.InventoryItem
	serialItem *catalog.InventoryItem
}

func newTestAPI(t *testing.T) *testAPI {
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
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	ctx := context.Background()
	vendors := persistence.NewGormVendorRepository(db)
	warehouses := persistence.NewGormWarehouseRepository(db)
	inventory := persistence.NewGormInventoryItemRepository(db)

	api := &testAPI{db: db}
	api.vendor, err = partner.NewVendor("Acme Supplies")
	require.NoError(t, err)
	require.NoError(t, vendors.Save(ctx, api.vendor))
	api.warehouse, err = partner.NewWarehouse("Main", "Dock 1")
	require.NoError(t, err)
	require.NoError(t, warehouses.Save(ctx, api.warehouse))
	api.bulkItem, err = catalog.NewInventoryItem("SKU-BULK", "Cable", catalog.TrackingTypeBulk)
	require.NoError(t, err)
	require.NoError(t, inventory.Save(ctx, api.bulkItem))
	api.serialItem, err = catalog.NewInventoryItem("SKU-SER", "Laptop", catalog.TrackingTypeIndividual)
	require.NoError(t, err)
	require.NoError(t, inventory.Save(ctx, api.serialItem))

	txnRepo := persistence.NewGormPurchaseTransactionRepository(db)
	itemRepo := persistence.NewGormPurchaseTransactionItemRepository(db)
	store := persistence.NewGormPurchaseAggregateStore(db)

	sequenceSvc := sequenceapp.NewSequenceService(persistence.NewGormSequenceRepository(db), nil)
	itemSvc := tradeapp.NewPurchaseTransactionItemService(itemRepo, txnRepo, store, inventory, warehouses, nil)
	txnSvc := tradeapp.NewPurchaseTransactionService(txnRepo, itemRepo, store, vendors, sequenceSvc, itemSvc, nil)
	idem := cache.NewIdempotencyFactory(config.RedisConfig{}).InMemory()
	t.Cleanup(func() { _ = idem.Close() })
	txnSvc.SetIdempotency(idem.Store, idem.Locker, shared.DefaultIdempotencyConfig())

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	v1 := engine.Group("/api/v1")
	NewSequenceHandler(sequenceSvc).RegisterRoutes(v1)
	NewPurchaseTransactionHandler(txnSvc).RegisterRoutes(v1)
	NewPurchaseTransactionItemHandler(itemSvc).RegisterRoutes(v1)
	NewSystemHandler(sqlDB).RegisterRoutes(v1)
	api.engine = engine

	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// createTransaction creates a DRAFT transaction for the seeded vendor
func (a *testAPI) createTransaction(t *testing.T) tradeapp.PurchaseTransactionResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/purchase-transactions", map[string]any{
		"vendor_id":        a.vendor.ID,
		"transaction_date": "2024-03-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[tradeapp.PurchaseTransactionResponse](t, w).Data
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func transactionPath(id uuid.UUID, suffix string) string {
	return "/api/v1/purchase-transactions/" + id.String() + suffix
}
