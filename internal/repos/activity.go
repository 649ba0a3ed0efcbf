package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ActivityRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Activity, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, activityID uint) (*types.Activity, error)
	Create(ctx context.Context, tx *gorm.DB, activity *types.Activity) (*types.Activity, error)
	Save(ctx context.Context, tx *gorm.DB, activity *types.Activity) error
	DeleteByID(ctx context.Context, tx *gorm.DB, activityID uint) error
	DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error
	CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error)
	IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error)
	SetOrderIndex(ctx context.Context, tx *gorm.DB, activityID uint, orderIndex int) error
	ResyncUIDs(ctx context.Context, tx *gorm.DB, studyID uint) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Activity
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, activityID uint) (*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var activity types.Activity
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", activityID, studyID).
		First(&activity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activity *types.Activity) (*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *activityRepo) Save(ctx context.Context, tx *gorm.DB, activity *types.Activity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(activity).Error
}

func (r *activityRepo) DeleteByID(ctx context.Context, tx *gorm.DB, activityID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", activityID).
		Delete(&types.Activity{}).Error
}

func (r *activityRepo) DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Delete(&types.Activity{}).Error
}

func (r *activityRepo) CountByStudy(ctx context.Context, tx *gorm.DB, studyID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("soa_id = ?", studyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) IDsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("soa_id = ?", studyID).
		Order("order_index").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *activityRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, activityID uint, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ?", activityID).
		Update("order_index", orderIndex).Error
}

// ResyncUIDs rewrites every activity_uid for a study to Activity_<order_index>.
// The two-pass rewrite through a TMP_ prefix avoids transient collisions while
// order indexes shift.
func (r *activityRepo) ResyncUIDs(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("soa_id = ?", studyID).
		Update("activity_uid", gorm.Expr("'TMP_' || id")).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("soa_id = ?", studyID).
		Update("activity_uid", gorm.Expr("'Activity_' || order_index")).Error
}
