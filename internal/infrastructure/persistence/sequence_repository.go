package persistence

import (
	"context"
	"errors"

	"github.com/erp/purchasing/internal/domain/sequence"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements sequence.Repository using GORM
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

var _ sequence.Repository = (*GormSequenceRepository)(nil)

// FindByPrefix finds a sequence by its normalized prefix
func (r *GormSequenceRepository) FindByPrefix(ctx context.Context, prefix string) (*sequence.Sequence, error) {
	var model models.SequenceModel
	if err := r.db.WithContext(ctx).Where("prefix = ?", prefix).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists sequences ordered by the filter, prefix ascending by default
func (r *GormSequenceRepository) FindAll(ctx context.Context, filter shared.Filter, activeOnly bool) ([]sequence.Sequence, error) {
	var rows []models.SequenceModel
	query := r.scope(r.db.WithContext(ctx), activeOnly)

	orderBy := ValidateSortField(filter.OrderBy, SequenceSortFields, "prefix")
	orderDir := "ASC"
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	sequences := make([]sequence.Sequence, len(rows))
	for i := range rows {
		sequences[i] = *rows[i].ToDomain()
	}
	return sequences, nil
}

// Count counts sequences
func (r *GormSequenceRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	err := r.scope(r.db.WithContext(ctx).Model(&models.SequenceModel{}), activeOnly).Count(&count).Error
	return count, err
}

// Modify applies fn to the locked row for prefix inside one database transaction.
// First use of a prefix inserts the initial row with ON CONFLICT DO NOTHING so
// concurrent creators converge on the same row before taking the row lock.
func (r *GormSequenceRepository) Modify(ctx context.Context, prefix string, create bool, fn func(seq *sequence.Sequence) error) (*sequence.Sequence, error) {
	var result *sequence.Sequence

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if create {
			seed, err := sequence.NewSequence(prefix)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "prefix"}},
				DoNothing: true,
			}).Create(models.SequenceModelFromDomain(seed)).Error; err != nil {
				return err
			}
		}

		var model models.SequenceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("prefix = ?", prefix).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		seq := model.ToDomain()
		if err := fn(seq); err != nil {
			return err
		}

		if err := tx.Save(models.SequenceModelFromDomain(seq)).Error; err != nil {
			return err
		}
		result = seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GormSequenceRepository) scope(query *gorm.DB, activeOnly bool) *gorm.DB {
	if activeOnly {
		return query.Where("is_active = ?", true)
	}
	return query
}
