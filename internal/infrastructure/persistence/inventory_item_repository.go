package persistence

import (
	"context"
	"errors"

	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements catalog.InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

var _ catalog.InventoryItemRepository = (*GormInventoryItemRepository)(nil)

// FindByID finds an active inventory item by ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds active inventory items by IDs, missing ones are omitted
func (r *GormInventoryItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.InventoryItem, error) {
	if len(ids) == 0 {
		return []catalog.InventoryItem{}, nil
	}
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", lo.Uniq(ids), true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.InventoryItemModel, _ int) catalog.InventoryItem {
		return *m.ToDomain()
	}), nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *catalog.InventoryItem) error {
	return r.db.WithContext(ctx).Save(models.InventoryItemModelFromDomain(item)).Error
}
