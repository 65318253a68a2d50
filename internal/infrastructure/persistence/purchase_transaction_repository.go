package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseTransactionRepository implements trade.PurchaseTransactionRepository using GORM
type GormPurchaseTransactionRepository struct {
	db *gorm.DB
}

// NewGormPurchaseTransactionRepository creates a new GormPurchaseTransactionRepository
func NewGormPurchaseTransactionRepository(db *gorm.DB) *GormPurchaseTransactionRepository {
	return &GormPurchaseTransactionRepository{db: db}
}

var _ trade.PurchaseTransactionRepository = (*GormPurchaseTransactionRepository)(nil)

// FindByID finds an active transaction by ID
func (r *GormPurchaseTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseTransaction, error) {
	var model models.PurchaseTransactionModel
	if err := r.active(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionID finds an active transaction by its allocated identifier
func (r *GormPurchaseTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*trade.PurchaseTransaction, error) {
	var model models.PurchaseTransactionModel
	if err := r.active(ctx).Where("transaction_id = ?", transactionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists transactions matching the filter, newest transaction date first by default
func (r *GormPurchaseTransactionRepository) FindAll(ctx context.Context, filter trade.PurchaseTransactionFilter) ([]trade.PurchaseTransaction, error) {
	var rows []models.PurchaseTransactionModel
	query := r.applyFilter(r.active(ctx), filter)

	orderBy := ValidateSortField(filter.OrderBy, PurchaseTransactionSortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir).Order("id ASC")

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

// Count counts transactions matching the filter
func (r *GormPurchaseTransactionRepository) Count(ctx context.Context, filter trade.PurchaseTransactionFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.active(ctx), filter).Count(&count).Error
	return count, err
}

// Search matches query case-insensitively against the transaction ID, PO number and remarks
func (r *GormPurchaseTransactionRepository) Search(ctx context.Context, query string, vendorID *uuid.UUID, status *trade.PurchaseStatus, limit int) ([]trade.PurchaseTransaction, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	db := r.active(ctx).Where(
		"LOWER(transaction_id) LIKE ? ESCAPE '\\' OR LOWER(purchase_order_number) LIKE ? ESCAPE '\\' OR LOWER(remarks) LIKE ? ESCAPE '\\'",
		pattern, pattern, pattern,
	)
	if vendorID != nil {
		db = db.Where("vendor_id = ?", *vendorID)
	}
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var rows []models.PurchaseTransactionModel
	if err := db.Order("transaction_date DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

type totalsRow struct {
	Count int64
	Total decimal.Decimal
}

type statusCountRow struct {
	Status string
	Count  int64
}

// Statistics aggregates active transactions in SQL
func (r *GormPurchaseTransactionRepository) Statistics(ctx context.Context, since time.Time) (*trade.PurchaseStatistics, error) {
	const totals = "COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total"

	var all totalsRow
	if err := r.active(ctx).Select(totals).Scan(&all).Error; err != nil {
		return nil, err
	}

	var recent totalsRow
	if err := r.active(ctx).Where("transaction_date >= ?", since).Select(totals).Scan(&recent).Error; err != nil {
		return nil, err
	}

	var byStatus []statusCountRow
	if err := r.active(ctx).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}

	return &trade.PurchaseStatistics{
		TotalTransactions:  all.Count,
		TotalAmount:        all.Total,
		RecentTransactions: recent.Count,
		RecentAmount:       recent.Total,
		ByStatus: lo.SliceToMap(byStatus, func(row statusCountRow) (trade.PurchaseStatus, int64) {
			return trade.PurchaseStatus(row.Status), row.Count
		}),
	}, nil
}

func (r *GormPurchaseTransactionRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PurchaseTransactionModel{}).Where("is_active = ?", true)
}

func (r *GormPurchaseTransactionRepository) applyFilter(query *gorm.DB, filter trade.PurchaseTransactionFilter) *gorm.DB {
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filter.DateTo)
	}
	if filter.PurchaseOrderNumber != "" {
		query = query.Where("purchase_order_number = ?", filter.PurchaseOrderNumber)
	}
	return query
}

func toTransactions(rows []models.PurchaseTransactionModel) []trade.PurchaseTransaction {
	return lo.Map(rows, func(m models.PurchaseTransactionModel, _ int) trade.PurchaseTransaction {
		return *m.ToDomain()
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
