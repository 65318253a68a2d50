package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/partner"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// SearchLimit caps the rows returned by Search
	SearchLimit = 100

	idempotencyKeyPrefix = "purchase_transaction:create:"
)

// IDAllocator issues identifiers for a prefix
type IDAllocator interface {
	AllocateNext(ctx context.Context, prefix string) (string, error)
}

// PurchaseTransactionService handles purchase transaction business operations
type PurchaseTransactionService struct {
	txnRepo   trade.PurchaseTransactionRepository
	itemRepo  trade.PurchaseTransactionItemRepository
	store     trade.PurchaseAggregateStore
	vendors   partner.VendorRepository
	ids       IDAllocator
	items     *PurchaseTransactionItemService
	logger    *zap.Logger
	metrics   *telemetry.PurchasingMetrics
	prefix    string
	now       func() time.Time
	idemStore shared.IdempotencyStore
	locker    shared.Locker
	idemCfg   shared.IdempotencyConfig
}

// NewPurchaseTransactionService creates a new PurchaseTransactionService
func NewPurchaseTransactionService(
	txnRepo trade.PurchaseTransactionRepository,
	itemRepo trade.PurchaseTransactionItemRepository,
	store trade.PurchaseAggregateStore,
	vendors partner.VendorRepository,
	ids IDAllocator,
	items *PurchaseTransactionItemService,
	logger *zap.Logger,
) *PurchaseTransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseTransactionService{
		txnRepo:  txnRepo,
		itemRepo: itemRepo,
		store:    store,
		vendors:  vendors,
		ids:      ids,
		items:    items,
		logger:   logger.Named("purchase_transactions"),
		prefix:   trade.TransactionPrefix,
		now:      time.Now,
		idemCfg:  shared.DefaultIdempotencyConfig(),
	}
}

// SetMetrics sets the purchasing metrics collector
func (s *PurchaseTransactionService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// SetPrefix overrides the sequence prefix used for transaction ids
func (s *PurchaseTransactionService) SetPrefix(prefix string) {
	if prefix != "" {
		s.prefix = prefix
	}
}

// SetIdempotency enables idempotent creation. locker may be nil, in which case
// concurrent duplicates are only deduplicated after the first one finishes.
func (s *PurchaseTransactionService) SetIdempotency(store shared.IdempotencyStore, locker shared.Locker, cfg shared.IdempotencyConfig) {
	s.idemStore = store
	s.locker = locker
	s.idemCfg = cfg
}

// Create creates a DRAFT transaction with a freshly allocated id
func (s *PurchaseTransactionService) Create(ctx context.Context, req CreatePurchaseTransactionRequest) (*PurchaseTransactionResponse, error) {
	return s.idempotent(ctx, req.IdempotencyKey, func(ctx context.Context) (*trade.PurchaseTransaction, error) {
		return s.create(ctx, req, nil)
	})
}

// CreateWithItems creates a transaction and its first items in one unit of
// work, through the same validation and reconciliation path as CreateBulk
func (s *PurchaseTransactionService) CreateWithItems(ctx context.Context, req CreatePurchaseTransactionWithItemsRequest) (*PurchaseTransactionResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "At least one item is required")
	}

	var items []*trade.PurchaseTransactionItem
	resp, err := s.idempotent(ctx, req.IdempotencyKey, func(ctx context.Context) (*trade.PurchaseTransaction, error) {
		return s.create(ctx, req.CreatePurchaseTransactionRequest, func(txn *trade.PurchaseTransaction) (trade.MutateFunc, error) {
			prepared, err := s.items.prepareItems(ctx, txn.ID, req.Items)
			if err != nil {
				return nil, err
			}
			items = prepared
			return attachItems(prepared), nil
		})
	})
	if err != nil {
		return nil, err
	}

	if items != nil {
		resp.Items = make([]PurchaseTransactionItemResponse, len(items))
		for i, item := range items {
			resp.Items[i] = ToItemResponse(item)
		}
		if s.items.metrics != nil {
			s.items.metrics.RecordItemMutation(ctx, "create", len(items))
		}
	}
	return resp, nil
}

// create validates the vendor, allocates an id and persists. A transaction id
// collision is retried once with a fresh id.
func (s *PurchaseTransactionService) create(
	ctx context.Context,
	req CreatePurchaseTransactionRequest,
	withItems func(txn *trade.PurchaseTransaction) (trade.MutateFunc, error),
) (_ *trade.PurchaseTransaction, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_transaction", "create",
		telemetry.WithAttribute(telemetry.SpanAttrVendorID, req.VendorID.String()))
	defer telemetry.EndSpan(span, &err)

	if _, err := s.vendors.FindByID(ctx, req.VendorID); err != nil {
		return nil, notFound(err, "Vendor", req.VendorID.String())
	}

	code, err := s.ids.AllocateNext(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	txn, err := trade.NewPurchaseTransaction(code, req.VendorID, req.TransactionDate, req.PurchaseOrderNumber, req.Remarks)
	if err != nil {
		return nil, err
	}

	var fn trade.MutateFunc
	if withItems != nil {
		if fn, err = withItems(txn); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	created, err := s.store.Create(ctx, txn, fn)
	if isTransactionIDConflict(err) {
		s.logger.Warn("Transaction id collision, retrying with a fresh id", zap.String("transaction_id", code))
		if code, err = s.ids.AllocateNext(ctx, s.prefix); err != nil {
			return nil, err
		}
		txn.TransactionID = code
		created, err = s.store.Create(ctx, txn, fn)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(telemetry.SpanAttrTransactionID, created.TransactionID))
	s.logger.Info("Purchase transaction created",
		zap.String("transaction_id", created.TransactionID),
		zap.String("vendor_id", created.VendorID.String()))
	if s.metrics != nil {
		s.metrics.RecordTransactionCreated(ctx, created.GrandTotal)
		s.metrics.RecordAggregateWrite(ctx, "transaction_create", time.Since(start))
	}
	return created, nil
}

func isTransactionIDConflict(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) &&
		domainErr.Code == shared.CodeConflict &&
		domainErr.Details["field"] == "transaction_id"
}

// idempotent runs create at most once per key. A second request with the same
// key returns the transaction produced by the first; while the first is still
// running a duplicate fails with a conflict.
func (s *PurchaseTransactionService) idempotent(
	ctx context.Context,
	key string,
	create func(ctx context.Context) (*trade.PurchaseTransaction, error),
) (*PurchaseTransactionResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idemStore == nil || !s.idemCfg.Enabled {
		txn, err := create(ctx)
		if err != nil {
			return nil, err
		}
		resp := ToPurchaseTransactionResponse(txn)
		return &resp, nil
	}

	storeKey := idempotencyKeyPrefix + key
	if resp, ok, err := s.replay(ctx, storeKey); err != nil || ok {
		return resp, err
	}

	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, storeKey, s.idemCfg.LockTTL)
		if errors.Is(err, shared.ErrLockNotObtained) {
			return nil, shared.NewConflictError("idempotency_key", key,
				"A request with this idempotency key is already in progress")
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.logger.Warn("Failed to release idempotency lock", zap.String("key", key), zap.Error(err))
			}
		}()

		if resp, ok, err := s.replay(ctx, storeKey); err != nil || ok {
			return resp, err
		}
	}

	txn, err := create(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.idemStore.Remember(ctx, storeKey, txn.ID.String(), s.idemCfg.TTL); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.String("key", key), zap.Error(err))
	}
	resp := ToPurchaseTransactionResponse(txn)
	return &resp, nil
}

func (s *PurchaseTransactionService) replay(ctx context.Context, storeKey string) (*PurchaseTransactionResponse, bool, error) {
	stored, ok, err := s.idemStore.Lookup(ctx, storeKey)
	if err != nil || !ok {
		return nil, false, err
	}
	id, err := uuid.Parse(stored)
	if err != nil {
		return nil, false, nil
	}
	txn, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, notFound(err, "Purchase transaction", stored)
	}
	resp, err := s.withItems(ctx, txn)
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}

// Get retrieves a transaction with its items
func (s *PurchaseTransactionService) Get(ctx context.Context, id uuid.UUID) (*PurchaseTransactionResponse, error) {
	txn, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Purchase transaction", id.String())
	}
	return s.withItems(ctx, txn)
}

// GetByTransactionID retrieves a transaction by its allocated id
func (s *PurchaseTransactionService) GetByTransactionID(ctx context.Context, transactionID string) (*PurchaseTransactionResponse, error) {
	txn, err := s.txnRepo.FindByTransactionID(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, notFound(err, "Purchase transaction", transactionID)
	}
	return s.withItems(ctx, txn)
}

func (s *PurchaseTransactionService) withItems(ctx context.Context, txn *trade.PurchaseTransaction) (*PurchaseTransactionResponse, error) {
	items, err := s.itemRepo.FindAllByTransaction(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseTransactionResponse(txn)
	resp.Items = ToItemResponses(items)
	return &resp, nil
}

// Update changes header fields while the transaction is editable
func (s *PurchaseTransactionService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseTransactionRequest) (*PurchaseTransactionResponse, error) {
	if req.VendorID != nil {
		if _, err := s.vendors.FindByID(ctx, *req.VendorID); err != nil {
			return nil, notFound(err, "Vendor", req.VendorID.String())
		}
	}

	update := trade.HeaderUpdate{
		VendorID:            req.VendorID,
		TransactionDate:     req.TransactionDate,
		PurchaseOrderNumber: req.PurchaseOrderNumber,
		Remarks:             req.Remarks,
	}
	txn, err := s.store.Mutate(ctx, id, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		return txn.UpdateHeader(update)
	})
	if err != nil {
		return nil, notFound(err, "Purchase transaction", id.String())
	}
	resp := ToPurchaseTransactionResponse(txn)
	return &resp, nil
}

// Transition applies a lifecycle operation
func (s *PurchaseTransactionService) Transition(ctx context.Context, id uuid.UUID, op trade.Operation) (*PurchaseTransactionResponse, error) {
	var from trade.PurchaseStatus
	txn, err := s.store.Mutate(ctx, id, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		from = txn.Status
		return txn.Transition(op)
	})
	if err != nil {
		return nil, notFound(err, "Purchase transaction", id.String())
	}

	s.logger.Info("Purchase transaction status changed",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("from", from.String()),
		zap.String("to", txn.Status.String()))
	if s.metrics != nil {
		s.metrics.RecordTransition(ctx, op.String())
	}
	resp := ToPurchaseTransactionResponse(txn)
	return &resp, nil
}

// Delete soft deletes a transaction unless it is completed
func (s *PurchaseTransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Mutate(ctx, id, func(_ context.Context, txn *trade.PurchaseTransaction, _ trade.ItemWriter) error {
		return txn.MarkDeleted()
	})
	if err != nil {
		return notFound(err, "Purchase transaction", id.String())
	}
	return nil
}

// List retrieves transactions with filtering and pagination
func (s *PurchaseTransactionService) List(ctx context.Context, filter PurchaseTransactionListFilter) ([]PurchaseTransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.SortBy == "" {
		filter.SortBy = "transaction_date"
		filter.SortDesc = true
	}
	orderDir := "asc"
	if filter.SortDesc {
		orderDir = "desc"
	}

	f := trade.PurchaseTransactionFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.SortBy,
			OrderDir: orderDir,
		},
		VendorID:            filter.VendorID,
		DateFrom:            filter.DateFrom,
		DateTo:              filter.DateTo,
		PurchaseOrderNumber: strings.TrimSpace(filter.PurchaseOrderNumber),
	}
	if filter.Status != "" {
		status, err := trade.ParsePurchaseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		f.Status = &status
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, 0, shared.NewValidationError("date_to", "date_to must not be before date_from")
	}

	txns, err := s.txnRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txnRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PurchaseTransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToPurchaseTransactionResponse(&txns[i])
	}
	return out, total, nil
}

// Search matches the query against transaction id, PO number and remarks
func (s *PurchaseTransactionService) Search(ctx context.Context, req SearchPurchaseTransactionsRequest) ([]PurchaseTransactionResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, shared.NewValidationError("query", "Search query cannot be empty")
	}
	var status *trade.PurchaseStatus
	if req.Status != "" {
		parsed, err := trade.ParsePurchaseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	txns, err := s.txnRepo.Search(ctx, query, req.VendorID, status, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseTransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToPurchaseTransactionResponse(&txns[i])
	}
	return out, nil
}

// Statistics summarizes transactions; recent means dated within the current month
func (s *PurchaseTransactionService) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats, err := s.txnRepo.Statistics(ctx, since)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(trade.AllPurchaseStatuses))
	for _, st := range trade.AllPurchaseStatuses {
		byStatus[st.String()] = stats.ByStatus[st]
	}
	return &StatisticsResponse{
		TotalTransactions:  stats.TotalTransactions,
		TotalAmount:        stats.TotalAmount,
		RecentTransactions: stats.RecentTransactions,
		RecentAmount:       stats.RecentAmount,
		ByStatus:           byStatus,
		Since:              since,
	}, nil
}
