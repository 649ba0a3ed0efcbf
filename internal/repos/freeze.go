package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

// FreezeRepo is append-only: snapshots are written once and never updated
// or deleted.
type FreezeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, freeze *types.Freeze) (*types.Freeze, error)
	GetByID(ctx context.Context, tx *gorm.DB, studyID, freezeID uint) (*types.Freeze, error)
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Freeze, error)
	LabelsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]string, error)
}

type freezeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFreezeRepo(db *gorm.DB, baseLog *logger.Logger) FreezeRepo {
	return &freezeRepo{db: db, log: baseLog.With("repo", "FreezeRepo")}
}

func (r *freezeRepo) Create(ctx context.Context, tx *gorm.DB, freeze *types.Freeze) (*types.Freeze, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(freeze).Error; err != nil {
		return nil, err
	}
	return freeze, nil
}

func (r *freezeRepo) GetByID(ctx context.Context, tx *gorm.DB, studyID, freezeID uint) (*types.Freeze, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var freeze types.Freeze
	if err := transaction.WithContext(ctx).
		Where("id = ? AND soa_id = ?", freezeID, studyID).
		First(&freeze).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &freeze, nil
}

func (r *freezeRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.Freeze, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Freeze
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *freezeRepo) LabelsByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var labels []string
	if err := transaction.WithContext(ctx).
		Model(&types.Freeze{}).
		Where("soa_id = ?", studyID).
		Pluck("version_label", &labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}
