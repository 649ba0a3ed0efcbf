package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ElementRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Element, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, elementID uint) (*types.Element, error)
	Create(ctx context.Context, tx *gorm.DB, element *types.Element) (*types.Element, error)
	Save(ctx context.Context, tx *gorm.DB, element *types.Element) error
	DeleteByID(ctx context.Context, tx *gorm.DB, elementID uint) error
	DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error
	MaxOrderIndex(ctx context.Context, tx *gorm.DB, studyID uint) (int, error)
	IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error)
	SetOrderIndex(ctx context.Context, tx *gorm.DB, elementID uint, orderIndex int) error
}

type elementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewElementRepo(db *gorm.DB, baseLog *logger.Logger) ElementRepo {
	return &elementRepo{db: db, log: baseLog.With("repo", "ElementRepo")}
}

func (r *elementRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Element, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Element
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *elementRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, elementID uint) (*types.Element, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var element types.Element
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", elementID, studyID).
		First(&element).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &element, nil
}

func (r *elementRepo) Create(ctx context.Context, tx *gorm.DB, element *types.Element) (*types.Element, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(element).Error; err != nil {
		return nil, err
	}
	return element, nil
}

func (r *elementRepo) Save(ctx context.Context, tx *gorm.DB, element *types.Element) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(element).Error
}

func (r *elementRepo) DeleteByID(ctx context.Context, tx *gorm.DB, elementID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", elementID).
		Delete(&types.Element{}).Error
}

func (r *elementRepo) DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Delete(&types.Element{}).Error
}

func (r *elementRepo) MaxOrderIndex(ctx context.Context, tx *gorm.DB, studyID uint) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.Element{}).
		Where("soa_id = ?", studyID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *elementRepo) IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.Element{}).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *elementRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, elementID uint, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Element{}).
		Where("id = ?", elementID).
		Update("order_index", orderIndex).Error
}
