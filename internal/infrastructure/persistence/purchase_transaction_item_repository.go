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
)

// GormPurchaseTransactionItemRepository implements trade.PurchaseTransactionItemRepository using GORM
type GormPurchaseTransactionItemRepository struct {
	db *gorm.DB
}

// NewGormPurchaseTransactionItemRepository creates a new GormPurchaseTransactionItemRepository
func NewGormPurchaseTransactionItemRepository(db *gorm.DB) *GormPurchaseTransactionItemRepository {
	return &GormPurchaseTransactionItemRepository{db: db}
}

var _ trade.PurchaseTransactionItemRepository = (*GormPurchaseTransactionItemRepository)(nil)

// FindByID finds an active item by ID
func (r *GormPurchaseTransactionItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseTransactionItem, error) {
	return findItem(r.active(ctx).Where("id = ?", id))
}

// FindByTransaction lists the items of a transaction in insertion order by default
func (r *GormPurchaseTransactionItemRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID, filter shared.Filter) ([]trade.PurchaseTransactionItem, error) {
	query := r.active(ctx).Where("transaction_id = ?", transactionID)
	return findItems(paginateItems(query, filter, "created_at", "ASC"))
}

// CountByTransaction counts the items of a transaction
func (r *GormPurchaseTransactionItemRepository) CountByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx).Where("transaction_id = ?", transactionID).Count(&count).Error
	return count, err
}

// FindAllByTransaction returns every item of a transaction
func (r *GormPurchaseTransactionItemRepository) FindAllByTransaction(ctx context.Context, transactionID uuid.UUID) ([]trade.PurchaseTransactionItem, error) {
	return loadItems(r.active(ctx), transactionID)
}

// FindBySerialNumber resolves serial through the claim table
func (r *GormPurchaseTransactionItemRepository) FindBySerialNumber(ctx context.Context, serial string) (*trade.PurchaseTransactionItem, error) {
	var claim models.PurchaseItemSerialModel
	if err := r.db.WithContext(ctx).
		Where("serial_number = ?", strings.TrimSpace(serial)).
		First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, claim.ItemID)
}

// FindWithWarranty lists items with a warranty period type
func (r *GormPurchaseTransactionItemRepository) FindWithWarranty(ctx context.Context, filter shared.Filter) ([]trade.PurchaseTransactionItem, error) {
	return findItems(paginateItems(r.withWarranty(ctx), filter, "created_at", "DESC"))
}

// CountWithWarranty counts items with a warranty period type
func (r *GormPurchaseTransactionItemRepository) CountWithWarranty(ctx context.Context) (int64, error) {
	var count int64
	err := r.withWarranty(ctx).Count(&count).Error
	return count, err
}

func (r *GormPurchaseTransactionItemRepository) active(ctx context.Context) *gorm.DB {
	return activeItems(r.db.WithContext(ctx))
}

func (r *GormPurchaseTransactionItemRepository) withWarranty(ctx context.Context) *gorm.DB {
	return r.active(ctx).Where("warranty_period_type IS NOT NULL AND warranty_period_type <> ''")
}

func activeItems(db *gorm.DB) *gorm.DB {
	return db.Model(&models.PurchaseTransactionItemModel{}).Where("is_active = ?", true)
}

func paginateItems(query *gorm.DB, filter shared.Filter, defaultField, defaultDir string) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, PurchaseTransactionItemSortFields, defaultField)
	orderDir := defaultDir
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(orderBy + " " + orderDir).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

func loadItems(db *gorm.DB, transactionID uuid.UUID) ([]trade.PurchaseTransactionItem, error) {
	return findItems(activeItems(db).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Order("id ASC"))
}

func findItem(query *gorm.DB) (*trade.PurchaseTransactionItem, error) {
	var model models.PurchaseTransactionItemModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func findItems(query *gorm.DB) ([]trade.PurchaseTransactionItem, error) {
	var rows []models.PurchaseTransactionItemModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.PurchaseTransactionItemModel, _ int) trade.PurchaseTransactionItem {
		return *m.ToDomain()
	}), nil
}
