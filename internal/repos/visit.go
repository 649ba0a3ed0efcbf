package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type VisitRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Visit, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, visitID uint) (*types.Visit, error)
	Create(ctx context.Context, tx *gorm.DB, visit *types.Visit) (*types.Visit, error)
	Save(ctx context.Context, tx *gorm.DB, visit *types.Visit) error
	DeleteByID(ctx context.Context, tx *gorm.DB, visitID uint) error
	DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error
	CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error)
	IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error)
	SetOrderIndex(ctx context.Context, tx *gorm.DB, visitID uint, orderIndex int) error
}

type visitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVisitRepo(db *gorm.DB, baseLog *logger.Logger) VisitRepo {
	return &visitRepo{db: db, log: baseLog.With("repo", "VisitRepo")}
}

func (r *visitRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Visit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Visit
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *visitRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, visitID uint) (*types.Visit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var visit types.Visit
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", visitID, studyID).
		First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepo) Create(ctx context.Context, tx *gorm.DB, visit *types.Visit) (*types.Visit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(visit).Error; err != nil {
		return nil, err
	}
	return visit, nil
}

func (r *visitRepo) Save(ctx context.Context, tx *gorm.DB, visit *types.Visit) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(visit).Error
}

func (r *visitRepo) DeleteByID(ctx context.Context, tx *gorm.DB, visitID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", visitID).
		Delete(&types.Visit{}).Error
}

func (r *visitRepo) DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Delete(&types.Visit{}).Error
}

func (r *visitRepo) CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Visit{}).
		Where("soa_id = ?", studyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *visitRepo) IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.Visit{}).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *visitRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, visitID uint, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Visit{}).
		Where("id = ?", visitID).
		Update("order_index", orderIndex).Error
}
