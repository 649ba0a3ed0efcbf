package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ArmRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Arm, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, armID uint) (*types.Arm, error)
	Create(ctx context.Context, tx *gorm.DB, arm *types.Arm) (*types.Arm, error)
	Save(ctx context.Context, tx *gorm.DB, arm *types.Arm) error
	DeleteByID(ctx context.Context, tx *gorm.DB, armID uint) error
	MaxOrderIndex(ctx context.Context, tx *gorm.DB, studyID uint) (int, error)
	UIDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]string, error)
	IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error)
	SetOrderIndex(ctx context.Context, tx *gorm.DB, armID uint, orderIndex int) error
}

type armRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArmRepo(db *gorm.DB, baseLog *logger.Logger) ArmRepo {
	return &armRepo{db: db, log: baseLog.With("repo", "ArmRepo")}
}

func (r *armRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Arm, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Arm
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *armRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, armID uint) (*types.Arm, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var arm types.Arm
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", armID, studyID).
		First(&arm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &arm, nil
}

func (r *armRepo) Create(ctx context.Context, tx *gorm.DB, arm *types.Arm) (*types.Arm, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(arm).Error; err != nil {
		return nil, err
	}
	return arm, nil
}

func (r *armRepo) Save(ctx context.Context, tx *gorm.DB, arm *types.Arm) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(arm).Error
}

func (r *armRepo) DeleteByID(ctx context.Context, tx *gorm.DB, armID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", armID).
		Delete(&types.Arm{}).Error
}

func (r *armRepo) MaxOrderIndex(ctx context.Context, tx *gorm.DB, studyID uint) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.Arm{}).
		Where("soa_id = ?", studyID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *armRepo) UIDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var uids []string
	if err := transaction.WithContext(ctx).
		Model(&types.Arm{}).
		Where("soa_id = ? AND arm_uid IS NOT NULL", studyID).
		Pluck("arm_uid", &uids).Error; err != nil {
		return nil, err
	}
	return uids, nil
}

func (r *armRepo) IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.Arm{}).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *armRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, armID uint, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Arm{}).
		Where("id = ?", armID).
		Update("order_index", orderIndex).Error
}
