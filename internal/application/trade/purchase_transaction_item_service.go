package trade

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/partner"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MaxItemsPerBatch bounds a single bulk item request
const MaxItemsPerBatch = 500

// PurchaseTransactionItemService handles line item operations. Every mutation
// runs inside the aggregate store so totals are reconciled in the same unit.
type PurchaseTransactionItemService struct {
	itemRepo   trade.PurchaseTransactionItemRepository
	txnRepo    trade.PurchaseTransactionRepository
	store      trade.PurchaseAggregateStore
	inventory  catalog.InventoryItemRepository
	warehouses partner.WarehouseRepository
	logger     *zap.Logger
	metrics    *telemetry.PurchasingMetrics
}

// NewPurchaseTransactionItemService creates a new PurchaseTransactionItemService
func NewPurchaseTransactionItemService(
	itemRepo trade.PurchaseTransactionItemRepository,
	txnRepo trade.PurchaseTransactionRepository,
	store trade.PurchaseAggregateStore,
	inventory catalog.InventoryItemRepository,
	warehouses partner.WarehouseRepository,
	logger *zap.Logger,
) *PurchaseTransactionItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseTransactionItemService{
		itemRepo:   itemRepo,
		txnRepo:    txnRepo,
		store:      store,
		inventory:  inventory,
		warehouses: warehouses,
		logger:     logger.Named("purchase_items"),
	}
}

// SetMetrics sets the purchasing metrics collector
func (s *PurchaseTransactionItemService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// Create adds one item to a transaction
func (s *PurchaseTransactionItemService) Create(ctx context.Context, transactionID uuid.UUID, req CreateItemRequest) (*PurchaseTransactionItemResponse, error) {
	out, err := s.CreateBulk(ctx, transactionID, CreateItemsBulkRequest{Items: []CreateItemRequest{req}})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CreateBulk validates every item before any is written, then persists the
// whole batch and reconciles totals once. Any failure leaves nothing behind.
func (s *PurchaseTransactionItemService) CreateBulk(ctx context.Context, transactionID uuid.UUID, req CreateItemsBulkRequest) ([]PurchaseTransactionItemResponse, error) {
	txn, err := s.txnRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, "Purchase transaction", transactionID.String())
	}
	if err := txn.EnsureCanAddItems(); err != nil {
		return nil, err
	}

	items, err := s.prepareItems(ctx, transactionID, req.Items)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err := s.store.Mutate(ctx, transactionID, attachItems(items)); err != nil {
		return nil, notFound(err, "Purchase transaction", transactionID.String())
	}
	s.record(ctx, "create", len(items), start)

	s.logger.Debug("Items added to purchase transaction",
		zap.String("transaction_id", txn.TransactionID),
		zap.Int("count", len(items)))

	out := make([]PurchaseTransactionItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, nil
}

// prepareItems builds and validates candidate items without writing anything.
// References are resolved and tracking rules checked for every item, then the
// batch is checked for serial numbers repeated across its own items.
func (s *PurchaseTransactionItemService) prepareItems(ctx context.Context, transactionID uuid.UUID, reqs []CreateItemRequest) ([]*trade.PurchaseTransactionItem, error) {
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("items", "At least one item is required")
	}
	if len(reqs) > MaxItemsPerBatch {
		return nil, shared.NewValidationError("items", fmt.Sprintf("At most %d items can be added at once", MaxItemsPerBatch))
	}

	items := make([]*trade.PurchaseTransactionItem, len(reqs))
	for i, r := range reqs {
		item, err := trade.NewPurchaseTransactionItem(transactionID, r.toInput())
		if err != nil {
			return nil, withIndex(err, i)
		}
		items[i] = item
	}

	inventoryIDs := lo.Uniq(lo.Map(items, func(item *trade.PurchaseTransactionItem, _ int) uuid.UUID {
		return item.InventoryItemID
	}))
	found, err := s.inventory.FindByIDs(ctx, inventoryIDs)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(found, func(inv catalog.InventoryItem) uuid.UUID { return inv.ID })

	warehouseIDs := lo.Uniq(lo.FilterMap(items, func(item *trade.PurchaseTransactionItem, _ int) (uuid.UUID, bool) {
		if item.WarehouseID == nil {
			return uuid.Nil, false
		}
		return *item.WarehouseID, true
	}))
	for _, id := range warehouseIDs {
		if _, err := s.warehouses.FindByID(ctx, id); err != nil {
			return nil, notFound(err, "Warehouse", id.String())
		}
	}

	for i, item := range items {
		inv, ok := byID[item.InventoryItemID]
		if !ok {
			return nil, withIndex(shared.NewNotFoundError("Inventory item", item.InventoryItemID.String()), i)
		}
		if err := item.ValidateForTracking(inv.TrackingType); err != nil {
			return nil, withIndex(err, i)
		}
	}

	if dups := trade.DuplicateSerialNumbers(items); len(dups) > 0 {
		return nil, shared.NewConflictError("serial_number", strings.Join(dups, ","),
			"Duplicate serial numbers within request: "+strings.Join(dups, ", "))
	}
	return items, nil
}

// attachItems is the single write path for new items. The parent status is
// rechecked under the row lock and serial numbers are checked against every
// active item in the system before the batch is inserted.
func attachItems(items []*trade.PurchaseTransactionItem) trade.MutateFunc {
	return func(ctx context.Context, txn *trade.PurchaseTransaction, w trade.ItemWriter) error {
		if err := txn.EnsureCanAddItems(); err != nil {
			return err
		}
		if serials := trade.SerialNumbersOf(items); len(serials) > 0 {
			existing, err := w.ExistingSerialNumbers(ctx, serials)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return shared.NewConflictError("serial_number", strings.Join(existing, ","),
					"Serial numbers already exist: "+strings.Join(existing, ", "))
			}
		}
		return w.Insert(ctx, items)
	}
}

// Get retrieves an item by ID
func (s *PurchaseTransactionItemService) Get(ctx context.Context, itemID uuid.UUID) (*PurchaseTransactionItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "Purchase transaction item", itemID.String())
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// ListByTransaction lists the items of a transaction
func (s *PurchaseTransactionItemService) ListByTransaction(ctx context.Context, transactionID uuid.UUID, page, pageSize int) ([]PurchaseTransactionItemResponse, int64, error) {
	if _, err := s.txnRepo.FindByID(ctx, transactionID); err != nil {
		return nil, 0, notFound(err, "Purchase transaction", transactionID.String())
	}
	filter := pageFilter(page, pageSize)
	items, err := s.itemRepo.FindByTransaction(ctx, transactionID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountByTransaction(ctx, transactionID)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// Update changes pricing, remarks or warranty of an item while its transaction is editable
func (s *PurchaseTransactionItemService) Update(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) (*PurchaseTransactionItemResponse, error) {
	current, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "Purchase transaction item", itemID.String())
	}

	var updated *trade.PurchaseTransactionItem
	start := time.Now()
	_, err = s.store.Mutate(ctx, current.TransactionID, func(ctx context.Context, txn *trade.PurchaseTransaction, w trade.ItemWriter) error {
		if err := txn.EnsureEditable(); err != nil {
			return err
		}
		item, err := w.FindByID(ctx, itemID)
		if err != nil {
			return notFound(err, "Purchase transaction item", itemID.String())
		}
		if err := applyItemUpdate(item, req); err != nil {
			return err
		}
		updated = item
		return w.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "update", 1, start)

	resp := ToItemResponse(updated)
	return &resp, nil
}

func applyItemUpdate(item *trade.PurchaseTransactionItem, req UpdateItemRequest) error {
	if err := item.UpdatePricing(trade.PricingUpdate{
		UnitPrice: req.UnitPrice,
		Discount:  req.Discount,
		TaxAmount: req.TaxAmount,
	}); err != nil {
		return err
	}

	if req.WarrantyPeriodType != nil || req.WarrantyPeriod != nil {
		periodType := item.WarrantyPeriodType
		period := item.WarrantyPeriod
		if req.WarrantyPeriodType != nil {
			periodType = trade.WarrantyPeriodType(strings.ToUpper(strings.TrimSpace(*req.WarrantyPeriodType)))
			if periodType == "" {
				period = nil
			}
		}
		if req.WarrantyPeriod != nil {
			period = req.WarrantyPeriod
		}
		if err := item.UpdateWarranty(periodType, period); err != nil {
			return err
		}
	}

	if req.Remarks != nil {
		item.UpdateRemarks(*req.Remarks)
	}
	return nil
}

// Delete soft deletes an item while its transaction is editable and releases its serial numbers
func (s *PurchaseTransactionItemService) Delete(ctx context.Context, itemID uuid.UUID) error {
	current, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return notFound(err, "Purchase transaction item", itemID.String())
	}

	start := time.Now()
	_, err = s.store.Mutate(ctx, current.TransactionID, func(ctx context.Context, txn *trade.PurchaseTransaction, w trade.ItemWriter) error {
		if err := txn.EnsureEditable(); err != nil {
			return err
		}
		item, err := w.FindByID(ctx, itemID)
		if err != nil {
			return notFound(err, "Purchase transaction item", itemID.String())
		}
		return w.SoftDelete(ctx, item)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "delete", 1, start)
	return nil
}

// GetBySerialNumber finds the active item carrying serial
func (s *PurchaseTransactionItemService) GetBySerialNumber(ctx context.Context, serial string) (*PurchaseTransactionItemResponse, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, shared.NewValidationError("serial_number", "Serial number cannot be empty")
	}
	item, err := s.itemRepo.FindBySerialNumber(ctx, serial)
	if err != nil {
		return nil, notFound(err, "Serial number", serial)
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// ListWithWarranty lists items carrying warranty information
func (s *PurchaseTransactionItemService) ListWithWarranty(ctx context.Context, page, pageSize int) ([]PurchaseTransactionItemResponse, int64, error) {
	items, err := s.itemRepo.FindWithWarranty(ctx, pageFilter(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountWithWarranty(ctx)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// Summary aggregates the live items of a transaction
func (s *PurchaseTransactionItemService) Summary(ctx context.Context, transactionID uuid.UUID) (*ItemSummaryResponse, error) {
	if _, err := s.txnRepo.FindByID(ctx, transactionID); err != nil {
		return nil, notFound(err, "Purchase transaction", transactionID.String())
	}
	items, err := s.itemRepo.FindAllByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	sum := trade.Summarize(items)
	return &ItemSummaryResponse{
		TransactionID:          transactionID,
		TotalItems:             sum.TotalItems,
		TotalQuantity:          sum.TotalQuantity,
		TotalAmount:            sum.TotalAmount,
		TotalDiscount:          sum.TotalDiscount,
		TotalTax:               sum.TotalTax,
		AverageUnitPrice:       sum.AverageUnitPrice,
		ItemsWithWarranty:      sum.ItemsWithWarranty,
		ItemsWithSerialNumbers: sum.ItemsWithSerialNumbers,
	}, nil
}

func (s *PurchaseTransactionItemService) record(ctx context.Context, op string, count int, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordItemMutation(ctx, op, count)
	s.metrics.RecordAggregateWrite(ctx, "item_"+op, time.Since(start))
}

func pageFilter(page, pageSize int) shared.Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "asc"}
}

// notFound replaces a bare ErrNotFound with one naming the missing resource
func notFound(err error, resource, key string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr == shared.ErrNotFound {
		return shared.NewNotFoundError(resource, key)
	}
	return err
}

// withIndex tags a domain error with the position of the offending batch entry
func withIndex(err error, index int) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.WithDetail("index", strconv.Itoa(index))
	}
	return err
}
