package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type CellRepo interface {
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Cell, error)
	Get(ctx context.Context, tx *gorm.DB, studyID, visitID, activityID uint) (*types.Cell, error)
	Create(ctx context.Context, tx *gorm.DB, cell *types.Cell) (*types.Cell, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, cellID uint, status string) error
	DeleteByID(ctx context.Context, tx *gorm.DB, cellID uint) error
	DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error
	DeleteByVisit(ctx context.Context, tx *gorm.DB, studyID, visitID uint) error
	DeleteByActivity(ctx context.Context, tx *gorm.DB, studyID, activityID uint) error
}

type cellRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCellRepo(db *gorm.DB, baseLog *logger.Logger) CellRepo {
	return &cellRepo{db: db, log: baseLog.With("repo", "CellRepo")}
}

func (r *cellRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Cell, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Cell
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cellRepo) Get(ctx context.Context, tx *gorm.DB, studyID, visitID, activityID uint) (*types.Cell, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cell types.Cell
	if err := transaction.WithContext(ctx).
		Where("soa_id = ? AND visit_id = ? AND activity_id = ?", studyID, visitID, activityID).
		First(&cell).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cell, nil
}

func (r *cellRepo) Create(ctx context.Context, tx *gorm.DB, cell *types.Cell) (*types.Cell, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(cell).Error; err != nil {
		return nil, err
	}
	return cell, nil
}

func (r *cellRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, cellID uint, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Cell{}).
		Where("id = ?", cellID).
		Update("status", status).Error
}

func (r *cellRepo) DeleteByID(ctx context.Context, tx *gorm.DB, cellID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", cellID).
		Delete(&types.Cell{}).Error
}

func (r *cellRepo) DeleteByStudy(ctx context.Context, tx *gorm.DB, studyID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Delete(&types.Cell{}).Error
}

func (r *cellRepo) DeleteByVisit(ctx context.Context, tx *gorm.DB, studyID, visitID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ? AND visit_id = ?", studyID, visitID).
		Delete(&types.Cell{}).Error
}

func (r *cellRepo) DeleteByActivity(ctx context.Context, tx *gorm.DB, studyID, activityID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("soa_id = ? AND activity_id = ?", studyID, activityID).
		Delete(&types.Cell{}).Error
}
