package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseAggregateStore implements trade.PurchaseAggregateStore using GORM.
// Each call runs in a single database transaction: header insert or row lock,
// the caller's mutation, totals reconciliation from live items, header save.
type GormPurchaseAggregateStore struct {
	db *gorm.DB
}

// NewGormPurchaseAggregateStore creates a new GormPurchaseAggregateStore
func NewGormPurchaseAggregateStore(db *gorm.DB) *GormPurchaseAggregateStore {
	return &GormPurchaseAggregateStore{db: db}
}

var _ trade.PurchaseAggregateStore = (*GormPurchaseAggregateStore)(nil)

// Create inserts txn, runs fn and reconciles totals
func (s *GormPurchaseAggregateStore) Create(ctx context.Context, txn *trade.PurchaseTransaction, fn trade.MutateFunc) (*trade.PurchaseTransaction, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).Create(models.PurchaseTransactionModelFromDomain(txn))
		if result.Error != nil {
			return translateWriteError(result.Error, "transaction_id", txn.TransactionID)
		}
		if result.RowsAffected == 0 {
			return transactionIDConflict(txn.TransactionID)
		}
		return s.apply(ctx, tx, txn, fn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Mutate locks the active transaction row, runs fn and reconciles totals
func (s *GormPurchaseAggregateStore) Mutate(ctx context.Context, id uuid.UUID, fn trade.MutateFunc) (*trade.PurchaseTransaction, error) {
	var txn *trade.PurchaseTransaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.PurchaseTransactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", id, true).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		txn = model.ToDomain()
		return s.apply(ctx, tx, txn, fn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *GormPurchaseAggregateStore) apply(ctx context.Context, tx *gorm.DB, txn *trade.PurchaseTransaction, fn trade.MutateFunc) error {
	if fn != nil {
		if err := fn(ctx, txn, &gormItemWriter{tx: tx, transactionID: txn.ID}); err != nil {
			return err
		}
	}

	items, err := loadItems(tx, txn.ID)
	if err != nil {
		return err
	}
	txn.ReconcileTotals(items)

	return tx.Save(models.PurchaseTransactionModelFromDomain(txn)).Error
}

// gormItemWriter writes the items of one aggregate on the open transaction
type gormItemWriter struct {
	tx            *gorm.DB
	transactionID uuid.UUID
}

var _ trade.ItemWriter = (*gormItemWriter)(nil)

func (w *gormItemWriter) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseTransactionItem, error) {
	return findItem(activeItems(w.tx).Where("id = ? AND transaction_id = ?", id, w.transactionID))
}

func (w *gormItemWriter) ExistingSerialNumbers(ctx context.Context, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return []string{}, nil
	}
	var existing []string
	if err := w.tx.Model(&models.PurchaseItemSerialModel{}).
		Where("serial_number IN ?", lo.Uniq(serials)).
		Order("serial_number ASC").
		Pluck("serial_number", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (w *gormItemWriter) Insert(ctx context.Context, items []*trade.PurchaseTransactionItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := lo.Map(items, func(item *trade.PurchaseTransactionItem, _ int) *models.PurchaseTransactionItemModel {
		return models.PurchaseTransactionItemModelFromDomain(item)
	})
	if err := w.tx.CreateInBatches(rows, 100).Error; err != nil {
		return err
	}

	claims := lo.FlatMap(items, func(item *trade.PurchaseTransactionItem, _ int) []models.PurchaseItemSerialModel {
		return models.SerialClaimsFor(item)
	})
	return w.claim(claims)
}

func (w *gormItemWriter) Update(ctx context.Context, item *trade.PurchaseTransactionItem) error {
	return w.tx.Save(models.PurchaseTransactionItemModelFromDomain(item)).Error
}

func (w *gormItemWriter) SoftDelete(ctx context.Context, item *trade.PurchaseTransactionItem) error {
	item.Deactivate()
	item.Touch()
	if err := w.Update(ctx, item); err != nil {
		return err
	}
	return w.tx.Where("item_id = ?", item.ID).Delete(&models.PurchaseItemSerialModel{}).Error
}

// claim inserts serial claim rows; a row that already exists means another
// active item holds the serial
func (w *gormItemWriter) claim(claims []models.PurchaseItemSerialModel) error {
	if len(claims) == 0 {
		return nil
	}
	result := w.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "serial_number"}},
		DoNothing: true,
	}).Create(&claims)
	if result.Error != nil {
		return translateWriteError(result.Error, "serial_number", "")
	}
	if result.RowsAffected < int64(len(claims)) {
		return shared.NewConflictError("serial_number", "",
			"Serial numbers are already assigned to another item")
	}
	return nil
}

func transactionIDConflict(transactionID string) error {
	return shared.NewConflictError("transaction_id", transactionID, "Transaction ID already exists")
}

// translateWriteError maps unique violations to conflict errors
func translateWriteError(err error, field, value string) error {
	if isDuplicateKey(err) {
		return shared.NewConflictError(field, value, "Resource conflicts with existing data")
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
