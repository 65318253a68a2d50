package trade

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/partner"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockVendorRepository is a mock implementation of partner.VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

// MockWarehouseRepository is a mock implementation of partner.WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, warehouse *partner.Warehouse) error {
	return m.Called(ctx, warehouse).Error(0)
}

// MockInventoryItemRepository is a mock implementation of catalog.InventoryItemRepository
type MockInventoryItemRepository struct {
	mock.Mock
}

func (m *MockInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.InventoryItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) Save(ctx context.Context, item *catalog.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

// MockIDAllocator is a mock implementation of IDAllocator
type MockIDAllocator struct {
	mock.Mock
}

func (m *MockIDAllocator) AllocateNext(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

// memAggregate is an in-memory aggregate store that also serves the read
// repositories. Every unit of work is applied to a snapshot and discarded on error.
type memAggregate struct {
	mu      sync.Mutex
	txns    map[uuid.UUID]trade.PurchaseTransaction
	items   map[uuid.UUID]trade.PurchaseTransactionItem
	order   []uuid.UUID
	serials map[string]uuid.UUID
}

func newMemAggregate() *memAggregate {
	return &memAggregate{
		txns:    map[uuid.UUID]trade.PurchaseTransaction{},
		items:   map[uuid.UUID]trade.PurchaseTransactionItem{},
		serials: map[string]uuid.UUID{},
	}
}

type memSnapshot struct {
	txns    map[uuid.UUID]trade.PurchaseTransaction
	items   map[uuid.UUID]trade.PurchaseTransactionItem
	order   []uuid.UUID
	serials map[string]uuid.UUID
}

func (s *memAggregate) snapshot() memSnapshot {
	snap := memSnapshot{
		txns:    make(map[uuid.UUID]trade.PurchaseTransaction, len(s.txns)),
		items:   make(map[uuid.UUID]trade.PurchaseTransactionItem, len(s.items)),
		order:   slices.Clone(s.order),
		serials: make(map[string]uuid.UUID, len(s.serials)),
	}
	for k, v := range s.txns {
		snap.txns[k] = v
	}
	for k, v := range s.items {
		v.SerialNumbers = slices.Clone(v.SerialNumbers)
		snap.items[k] = v
	}
	for k, v := range s.serials {
		snap.serials[k] = v
	}
	return snap
}

func (s *memAggregate) restore(snap memSnapshot) {
	s.txns, s.items, s.order, s.serials = snap.txns, snap.items, snap.order, snap.serials
}

func (s *memAggregate) Create(ctx context.Context, txn *trade.PurchaseTransaction, fn trade.MutateFunc) (*trade.PurchaseTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.txns {
		if existing.TransactionID == txn.TransactionID {
			return nil, shared.NewConflictError("transaction_id", txn.TransactionID, "Transaction ID already exists")
		}
	}
	snap := s.snapshot()
	s.txns[txn.ID] = *txn
	return s.run(ctx, snap, txn.ID, fn)
}

func (s *memAggregate) Mutate(ctx context.Context, id uuid.UUID, fn trade.MutateFunc) (*trade.PurchaseTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.txns[id]
	if !ok || !existing.IsActive {
		return nil, shared.ErrNotFound
	}
	return s.run(ctx, s.snapshot(), id, fn)
}

func (s *memAggregate) run(ctx context.Context, snap memSnapshot, id uuid.UUID, fn trade.MutateFunc) (*trade.PurchaseTransaction, error) {
	working := s.txns[id]
	if fn != nil {
		if err := fn(ctx, &working, &memWriter{s: s, txnID: id}); err != nil {
			s.restore(snap)
			return nil, err
		}
	}
	working.ReconcileTotals(s.itemsOf(id, false))
	s.txns[id] = working
	out := working
	return &out, nil
}

func (s *memAggregate) itemsOf(txnID uuid.UUID, activeOnly bool) []trade.PurchaseTransactionItem {
	var out []trade.PurchaseTransactionItem
	for _, id := range s.order {
		item := s.items[id]
		if item.TransactionID == txnID && (!activeOnly || item.IsActive) {
			out = append(out, item)
		}
	}
	return out
}

type memWriter struct {
	s     *memAggregate
	txnID uuid.UUID
}

func (w *memWriter) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseTransactionItem, error) {
	item, ok := w.s.items[id]
	if !ok || !item.IsActive || item.TransactionID != w.txnID {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (w *memWriter) ExistingSerialNumbers(_ context.Context, serials []string) ([]string, error) {
	var out []string
	for _, sn := range serials {
		if _, ok := w.s.serials[sn]; ok {
			out = append(out, sn)
		}
	}
	return out, nil
}

func (w *memWriter) Insert(_ context.Context, items []*trade.PurchaseTransactionItem) error {
	for _, item := range items {
		for _, sn := range item.SerialNumbers {
			if _, ok := w.s.serials[sn]; ok {
				return shared.NewConflictError("serial_number", sn, "Serial number already exists")
			}
			w.s.serials[sn] = item.ID
		}
		w.s.items[item.ID] = *item
		w.s.order = append(w.s.order, item.ID)
	}
	return nil
}

func (w *memWriter) Update(_ context.Context, item *trade.PurchaseTransactionItem) error {
	w.s.items[item.ID] = *item
	return nil
}

func (w *memWriter) SoftDelete(_ context.Context, item *trade.PurchaseTransactionItem) error {
	item.Deactivate()
	w.s.items[item.ID] = *item
	for _, sn := range item.SerialNumbers {
		delete(w.s.serials, sn)
	}
	return nil
}

// read side

func (s *memAggregate) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[id]
	if !ok || !txn.IsActive {
		return nil, shared.ErrNotFound
	}
	return &txn, nil
}

func (s *memAggregate) FindByTransactionID(_ context.Context, code string) (*trade.PurchaseTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.txns {
		if txn.TransactionID == code && txn.IsActive {
			return &txn, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memAggregate) FindAll(_ context.Context, _ trade.PurchaseTransactionFilter) ([]trade.PurchaseTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []trade.PurchaseTransaction
	for _, txn := range s.txns {
		if txn.IsActive {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *memAggregate) Count(ctx context.Context, f trade.PurchaseTransactionFilter) (int64, error) {
	all, _ := s.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (s *memAggregate) Search(ctx context.Context, query string, _ *uuid.UUID, _ *trade.PurchaseStatus, limit int) ([]trade.PurchaseTransaction, error) {
	all, _ := s.FindAll(ctx, trade.PurchaseTransactionFilter{})
	var out []trade.PurchaseTransaction
	for _, txn := range all {
		if strings.Contains(strings.ToLower(txn.TransactionID), strings.ToLower(query)) && len(out) < limit {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *memAggregate) Statistics(ctx context.Context, since time.Time) (*trade.PurchaseStatistics, error) {
	all, _ := s.FindAll(ctx, trade.PurchaseTransactionFilter{})
	stats := &trade.PurchaseStatistics{ByStatus: map[trade.PurchaseStatus]int64{}}
	for _, txn := range all {
		stats.TotalTransactions++
		stats.TotalAmount = stats.TotalAmount.Add(txn.GrandTotal)
		stats.ByStatus[txn.Status]++
		if !txn.TransactionDate.Before(since) {
			stats.RecentTransactions++
			stats.RecentAmount = stats.RecentAmount.Add(txn.GrandTotal)
		}
	}
	return stats, nil
}

// memItems exposes the item read side of memAggregate
type memItems struct{ s *memAggregate }

func (r memItems) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseTransactionItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok || !item.IsActive {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (r memItems) FindByTransaction(_ context.Context, txnID uuid.UUID, _ shared.Filter) ([]trade.PurchaseTransactionItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOf(txnID, true), nil
}

func (r memItems) CountByTransaction(ctx context.Context, txnID uuid.UUID) (int64, error) {
	items, _ := r.FindByTransaction(ctx, txnID, shared.Filter{})
	return int64(len(items)), nil
}

func (r memItems) FindAllByTransaction(ctx context.Context, txnID uuid.UUID) ([]trade.PurchaseTransactionItem, error) {
	return r.FindByTransaction(ctx, txnID, shared.Filter{})
}

func (r memItems) FindBySerialNumber(ctx context.Context, serial string) (*trade.PurchaseTransactionItem, error) {
	r.s.mu.Lock()
	id, ok := r.s.serials[serial]
	r.s.mu.Unlock()
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r memItems) FindWithWarranty(_ context.Context, _ shared.Filter) ([]trade.PurchaseTransactionItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []trade.PurchaseTransactionItem
	for _, id := range r.s.order {
		item := r.s.items[id]
		if item.IsActive && item.HasWarranty() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r memItems) CountWithWarranty(ctx context.Context) (int64, error) {
	items, _ := r.FindWithWarranty(ctx, shared.Filter{})
	return int64(len(items)), nil
}

var (
	_ trade.PurchaseAggregateStore            = (*memAggregate)(nil)
	_ trade.PurchaseTransactionRepository     = (*memAggregate)(nil)
	_ trade.PurchaseTransactionItemRepository = memItems{}
)
