package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type EpochRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Epoch, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, epochID uint) (*types.Epoch, error)
	Create(ctx context.Context, tx *gorm.DB, epoch *types.Epoch) (*types.Epoch, error)
	Save(ctx context.Context, tx *gorm.DB, epoch *types.Epoch) error
	DeleteByID(ctx context.Context, tx *gorm.DB, epochID uint) error
	CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error)
	IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error)
	SetOrderIndex(ctx context.Context, tx *gorm.DB, epochID uint, orderIndex int) error
	ClearVisitReferences(ctx context.Context, tx *gorm.DB, epochID uint) error
}

type epochRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpochRepo(db *gorm.DB, baseLog *logger.Logger) EpochRepo {
	return &epochRepo{db: db, log: baseLog.With("repo", "EpochRepo")}
}

func (r *epochRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Epoch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Epoch
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *epochRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, epochID uint) (*types.Epoch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var epoch types.Epoch
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", epochID, studyID).
		First(&epoch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &epoch, nil
}

func (r *epochRepo) Create(ctx context.Context, tx *gorm.DB, epoch *types.Epoch) (*types.Epoch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(epoch).Error; err != nil {
		return nil, err
	}
	return epoch, nil
}

func (r *epochRepo) Save(ctx context.Context, tx *gorm.DB, epoch *types.Epoch) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(epoch).Error
}

func (r *epochRepo) DeleteByID(ctx context.Context, tx *gorm.DB, epochID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", epochID).
		Delete(&types.Epoch{}).Error
}

func (r *epochRepo) CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Epoch{}).
		Where("soa_id = ?", studyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *epochRepo) IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.Epoch{}).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *epochRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, epochID uint, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Epoch{}).
		Where("id = ?", epochID).
		Update("order_index", orderIndex).Error
}

func (r *epochRepo) ClearVisitReferences(ctx context.Context, tx *gorm.DB, epochID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Visit{}).
		Where("epoch_id = ?", epochID).
		Update("epoch_id", nil).Error
}
