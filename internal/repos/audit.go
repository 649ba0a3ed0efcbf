package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

// Audit tables are append-only; no update or delete methods exist.

type EntityAuditRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.EntityAudit) error
	ListByStudyAndKind(ctx context.Context, tx *gorm.DB, studyID uint, entityKind string) ([]*types.EntityAudit, error)
}

type RollbackAuditRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.RollbackAudit) error
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.RollbackAudit, error)
}

type ReorderAuditRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.ReorderAudit) error
	ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.ReorderAudit, error)
}

type entityAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityAuditRepo(db *gorm.DB, baseLog *logger.Logger) EntityAuditRepo {
	return &entityAuditRepo{db: db, log: baseLog.With("repo", "EntityAuditRepo")}
}

func (r *entityAuditRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.EntityAudit) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (r *entityAuditRepo) ListByStudyAndKind(ctx context.Context, tx *gorm.DB, studyID uint, entityKind string) ([]*types.EntityAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.EntityAudit
	if err := transaction.WithContext(ctx).
		Where("soa_id = ? AND entity_kind = ?", studyID, entityKind).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type rollbackAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRollbackAuditRepo(db *gorm.DB, baseLog *logger.Logger) RollbackAuditRepo {
	return &rollbackAuditRepo{db: db, log: baseLog.With("repo", "RollbackAuditRepo")}
}

func (r *rollbackAuditRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.RollbackAudit) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (r *rollbackAuditRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.RollbackAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RollbackAudit
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type reorderAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReorderAuditRepo(db *gorm.DB, baseLog *logger.Logger) ReorderAuditRepo {
	return &reorderAuditRepo{db: db, log: baseLog.With("repo", "ReorderAuditRepo")}
}

func (r *reorderAuditRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ReorderAudit) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (r *reorderAuditRepo) ListByStudy(ctx context.Context, tx *gorm.DB, studyID uint) ([]*types.ReorderAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ReorderAudit
	if err := transaction.WithContext(ctx).
		Where("soa_id = ?", studyID).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
