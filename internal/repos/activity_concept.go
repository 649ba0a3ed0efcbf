package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ActivityConceptRepo interface {
	ListByActivity(ctx context.Context, tx *gorm.DB, activityID uint) ([]*types.ActivityConcept, error)
	ListByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uint) ([]*types.ActivityConcept, error)
	Create(ctx context.Context, tx *gorm.DB, concepts []*types.ActivityConcept) ([]*types.ActivityConcept, error)
	DeleteByActivity(ctx context.Context, tx *gorm.DB, activityID uint) error
	DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error
}

type activityConceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityConceptRepo(db *gorm.DB, baseLog *logger.Logger) ActivityConceptRepo {
	return &activityConceptRepo{db: db, log: baseLog.With("repo", "ActivityConceptRepo")}
}

func (r *activityConceptRepo) ListByActivity(ctx context.Context, tx *gorm.DB, activityID uint) ([]*types.ActivityConcept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ActivityConcept
	if err := transaction.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityConceptRepo) ListByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uint) ([]*types.ActivityConcept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ActivityConcept
	if len(activityIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("activity_id IN ?", activityIDs).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityConceptRepo) Create(ctx context.Context, tx *gorm.DB, concepts []*types.ActivityConcept) ([]*types.ActivityConcept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(concepts) == 0 {
		return []*types.ActivityConcept{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&concepts).Error; err != nil {
		return nil, err
	}
	return concepts, nil
}

func (r *activityConceptRepo) DeleteByActivity(ctx context.Context, tx *gorm.DB, activityID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Delete(&types.ActivityConcept{}).Error
}

// DeleteByStudy removes mappings for every activity of the study. Must run
// before the activities themselves are deleted, while the subquery can still
// resolve them.
func (r *activityConceptRepo) DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("activity_id IN (?)",
			transaction.Model(&types.Activity{}).Select("id").Where("soa_id = ?", studyID)).
		Delete(&types.ActivityConcept{}).Error
}
