package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type StudyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, study *types.Study) (*types.Study, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID uint) (*types.Study, error)
	Exists(ctx context.Context, tx *gorm.DB, studyID uint) (bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Study, error)
	AllocateEpochSeq(ctx context.Context, tx *gorm.DB, studyID uint) (int, error)
}

type studyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyRepo(db *gorm.DB, baseLog *logger.Logger) StudyRepo {
	return &studyRepo{db: db, log: baseLog.With("repo", "StudyRepo")}
}

func (r *studyRepo) Create(ctx context.Context, tx *gorm.DB, study *types.Study) (*types.Study, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(study).Error; err != nil {
		return nil, err
	}
	return study, nil
}

func (r *studyRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID uint) (*types.Study, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var study types.Study
	if err := transaction.WithContext(ctx).First(&study, studyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) Exists(ctx context.Context, tx *gorm.DB, studyID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Study{}).
		Where("id = ?", studyID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllocateEpochSeq advances the study's epoch sequence counter and returns
// the new value. The counter only grows; rows written before the counter
// existed are floored at the highest sequence still live.
func (r *studyRepo) AllocateEpochSeq(ctx context.Context, tx *gorm.DB, studyID uint) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Study{}).
		Where("id = ?", studyID).
		Update("next_epoch_seq", gorm.Expr(
			"MAX(next_epoch_seq, (SELECT COALESCE(MAX(epoch_seq), 0) FROM epoch WHERE soa_id = ?)) + 1",
			studyID)).Error; err != nil {
		return 0, err
	}
	var seq int
	if err := transaction.WithContext(ctx).
		Model(&types.Study{}).
		Where("id = ?", studyID).
		Select("next_epoch_seq").
		Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *studyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Study, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Study
	if err := transaction.WithContext(ctx).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
