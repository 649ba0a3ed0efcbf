package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

// AuditService is the append-only ledger over every live-entity mutation plus
// dedicated rollback and reorder outcome records. Writes are best-effort:
// a failed audit write is logged and swallowed, never propagated to the
// primary operation.
type AuditService interface {
	Record(ctx context.Context, studyID uint, entityKind string, entityID *uint, action string, before, after interface{})
	RecordRollback(ctx context.Context, studyID, freezeID uint, counts RestoreCounts)
	RecordReorder(ctx context.Context, studyID uint, entityKind string, oldOrder, newOrder []uint)
	ListEntityAudit(ctx context.Context, studyID uint, entityKind string) ([]*types.EntityAudit, error)
	ListRollbackAudit(ctx context.Context, studyID uint) ([]*types.RollbackAudit, error)
	ListReorderAudit(ctx context.Context, studyID uint) ([]*types.ReorderAudit, error)
}

type auditService struct {
	entityAudit   repos.EntityAuditRepo
	rollbackAudit repos.RollbackAuditRepo
	reorderAudit  repos.ReorderAuditRepo
	log           *logger.Logger
}

func NewAuditService(entityAudit repos.EntityAuditRepo, rollbackAudit repos.RollbackAuditRepo, reorderAudit repos.ReorderAuditRepo, baseLog *logger.Logger) AuditService {
	return &auditService{
		entityAudit:   entityAudit,
		rollbackAudit: rollbackAudit,
		reorderAudit:  reorderAudit,
		log:           baseLog.With("service", "AuditService"),
	}
}

func (s *auditService) Record(ctx context.Context, studyID uint, entityKind string, entityID *uint, action string, before, after interface{}) {
	entry := &types.EntityAudit{
		StudyID:     studyID,
		EntityKind:  entityKind,
		EntityID:    entityID,
		Action:      action,
		Before:      marshalAudit(before),
		After:       marshalAudit(after),
		PerformedAt: time.Now().UTC(),
	}
	if err := s.entityAudit.Create(ctx, nil, entry); err != nil {
		s.log.Warn("Failed recording entity audit", "entity_kind", entityKind, "action", action, "error", err)
	}
}

func (s *auditService) RecordRollback(ctx context.Context, studyID, freezeID uint, counts RestoreCounts) {
	entry := &types.RollbackAudit{
		StudyID:            studyID,
		FreezeID:           freezeID,
		PerformedAt:        time.Now().UTC(),
		VisitsRestored:     counts.Visits,
		ActivitiesRestored: counts.Activities,
		CellsRestored:      counts.Cells,
		ConceptsRestored:   counts.Concepts,
		ElementsRestored:   counts.Elements,
	}
	if err := s.rollbackAudit.Create(ctx, nil, entry); err != nil {
		s.log.Warn("Failed recording rollback audit", "freeze_id", freezeID, "error", err)
	}
}

func (s *auditService) RecordReorder(ctx context.Context, studyID uint, entityKind string, oldOrder, newOrder []uint) {
	if equalOrder(oldOrder, newOrder) {
		// Null reorders do not pollute history.
		return
	}
	entry := &types.ReorderAudit{
		StudyID:     studyID,
		EntityKind:  entityKind,
		OldOrder:    marshalAudit(oldOrder),
		NewOrder:    marshalAudit(newOrder),
		PerformedAt: time.Now().UTC(),
	}
	if err := s.reorderAudit.Create(ctx, nil, entry); err != nil {
		s.log.Warn("Failed recording reorder audit", "entity_kind", entityKind, "error", err)
	}
}

func (s *auditService) ListEntityAudit(ctx context.Context, studyID uint, entityKind string) ([]*types.EntityAudit, error) {
	return s.entityAudit.ListByStudyAndKind(ctx, nil, studyID, entityKind)
}

func (s *auditService) ListRollbackAudit(ctx context.Context, studyID uint) ([]*types.RollbackAudit, error) {
	return s.rollbackAudit.ListByStudy(ctx, nil, studyID)
}

func (s *auditService) ListReorderAudit(ctx context.Context, studyID uint) ([]*types.ReorderAudit, error) {
	return s.reorderAudit.ListByStudy(ctx, nil, studyID)
}

func marshalAudit(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func equalOrder(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
