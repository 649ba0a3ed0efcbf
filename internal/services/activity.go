package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ActivityService interface {
	List(ctx context.Context, studyID uint) ([]*types.Activity, error)
	Get(ctx context.Context, studyID, activityID uint) (*types.Activity, error)
	Create(ctx context.Context, studyID uint, name string) (*types.Activity, error)
	CreateBulk(ctx context.Context, studyID uint, names []string) ([]*types.Activity, error)
	Update(ctx context.Context, studyID, activityID uint, name string) (*types.Activity, error)
	Delete(ctx context.Context, studyID, activityID uint) error
	Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error)
}

type activityService struct {
	db       *gorm.DB
	study    repos.StudyRepo
	activity repos.ActivityRepo
	cell     repos.CellRepo
	concept  repos.ActivityConceptRepo
	audit    AuditService
	log      *logger.Logger
}

func NewActivityService(db *gorm.DB, study repos.StudyRepo, activity repos.ActivityRepo, cell repos.CellRepo, concept repos.ActivityConceptRepo, audit AuditService, baseLog *logger.Logger) ActivityService {
	return &activityService{
		db:       db,
		study:    study,
		activity: activity,
		cell:     cell,
		concept:  concept,
		audit:    audit,
		log:      baseLog.With("service", "ActivityService"),
	}
}

func activityUID(orderIndex int) string {
	return fmt.Sprintf("Activity_%d", orderIndex)
}

func (s *activityService) List(ctx context.Context, studyID uint) ([]*types.Activity, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.activity.ListByStudy(ctx, nil, studyID)
}

func (s *activityService) Get(ctx context.Context, studyID, activityID uint) (*types.Activity, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	activity, err := s.activity.GetByID(ctx, nil, studyID, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apierr.NotFound("activity %d not found", activityID)
	}
	return activity, nil
}

func (s *activityService) Create(ctx context.Context, studyID uint, name string) (*types.Activity, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.create(ctx, studyID, name)
}

func (s *activityService) CreateBulk(ctx context.Context, studyID uint, names []string) ([]*types.Activity, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	created := make([]*types.Activity, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		activity, err := s.create(ctx, studyID, name)
		if err != nil {
			return nil, err
		}
		created = append(created, activity)
	}
	return created, nil
}

func (s *activityService) create(ctx context.Context, studyID uint, name string) (*types.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Invalid("activity name required")
	}
	count, err := s.activity.CountByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	activity := &types.Activity{
		StudyID:     studyID,
		Name:        name,
		OrderIndex:  int(count) + 1,
		ActivityUID: activityUID(int(count) + 1),
	}
	if _, err := s.activity.Create(ctx, nil, activity); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindActivity, &activity.ID, types.AuditActionCreate, nil, activity)
	return activity, nil
}

func (s *activityService) Update(ctx context.Context, studyID, activityID uint, name string) (*types.Activity, error) {
	activity, err := s.Get(ctx, studyID, activityID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Invalid("activity name required")
	}
	before := *activity
	activity.Name = name
	if err := s.activity.Save(ctx, nil, activity); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindActivity, &activity.ID, types.AuditActionUpdate, before, activity)
	return activity, nil
}

// Delete cascades cells and concept mappings, closes the order_index gap,
// and resyncs every activity_uid to the new dense ordering. The whole
// cascade commits as one transaction.
func (s *activityService) Delete(ctx context.Context, studyID, activityID uint) error {
	activity, err := s.Get(ctx, studyID, activityID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.cell.DeleteByActivity(ctx, tx, studyID, activityID); err != nil {
			return err
		}
		if err := s.concept.DeleteByActivity(ctx, tx, activityID); err != nil {
			return err
		}
		if err := s.activity.DeleteByID(ctx, tx, activityID); err != nil {
			return err
		}
		if err := s.reindex(ctx, tx, studyID); err != nil {
			return err
		}
		return s.activity.ResyncUIDs(ctx, tx, studyID)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, studyID, types.EntityKindActivity, &activityID, types.AuditActionDelete, activity, nil)
	return nil
}

func (s *activityService) Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, apierr.Invalid("order list required")
	}
	oldOrder, err := s.activity.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]struct{}, len(oldOrder))
	for _, id := range oldOrder {
		existing[id] = struct{}{}
	}
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return nil, apierr.Invalid("order contains invalid activity id %d", id)
		}
	}
	for idx, id := range order {
		if err := s.activity.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return nil, err
		}
	}
	if err := s.activity.ResyncUIDs(ctx, nil, studyID); err != nil {
		return nil, err
	}
	s.audit.RecordReorder(ctx, studyID, types.EntityKindActivity, oldOrder, order)
	s.audit.Record(ctx, studyID, types.EntityKindActivity, nil, types.AuditActionReorder,
		map[string][]uint{"old_order": oldOrder}, map[string][]uint{"new_order": order})
	return oldOrder, nil
}

func (s *activityService) reindex(ctx context.Context, tx *gorm.DB, studyID uint) error {
	ids, err := s.activity.IDsByStudy(ctx, tx, studyID)
	if err != nil {
		return err
	}
	for idx, id := range ids {
		if err := s.activity.SetOrderIndex(ctx, tx, id, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *activityService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}
