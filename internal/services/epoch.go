package services

import (
	"context"
	"strings"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

type EpochCreate struct {
	Name        string  `json:"name"`
	Label       *string `json:"epoch_label,omitempty"`
	Description *string `json:"epoch_description,omitempty"`
}

type EpochUpdate struct {
	Name        *string `json:"name,omitempty"`
	Label       *string `json:"epoch_label,omitempty"`
	Description *string `json:"epoch_description,omitempty"`
}

type EpochService interface {
	List(ctx context.Context, studyID uint) ([]*types.Epoch, error)
	Get(ctx context.Context, studyID, epochID uint) (*types.Epoch, error)
	Create(ctx context.Context, studyID uint, payload EpochCreate) (*types.Epoch, error)
	Update(ctx context.Context, studyID, epochID uint, payload EpochUpdate) (*types.Epoch, error)
	Delete(ctx context.Context, studyID, epochID uint) error
	Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error)
}

type epochService struct {
	study repos.StudyRepo
	epoch repos.EpochRepo
	audit AuditService
	log   *logger.Logger
}

func NewEpochService(study repos.StudyRepo, epoch repos.EpochRepo, audit AuditService, baseLog *logger.Logger) EpochService {
	return &epochService{
		study: study,
		epoch: epoch,
		audit: audit,
		log:   baseLog.With("service", "EpochService"),
	}
}

func (s *epochService) List(ctx context.Context, studyID uint) ([]*types.Epoch, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.epoch.ListByStudy(ctx, nil, studyID)
}

func (s *epochService) Get(ctx context.Context, studyID, epochID uint) (*types.Epoch, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	epoch, err := s.epoch.GetByID(ctx, nil, studyID, epochID)
	if err != nil {
		return nil, err
	}
	if epoch == nil {
		return nil, apierr.NotFound("epoch %d not found", epochID)
	}
	return epoch, nil
}

func (s *epochService) Create(ctx context.Context, studyID uint, payload EpochCreate) (*types.Epoch, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apierr.Invalid("epoch name required")
	}
	// Sequence numbers come from the study's persisted high-water mark and
	// are never reused, even after deletes. Order index is.
	seq, err := s.study.AllocateEpochSeq(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	count, err := s.epoch.CountByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	epoch := &types.Epoch{
		StudyID:     studyID,
		Name:        name,
		Label:       trimPtr(payload.Label),
		Description: trimPtr(payload.Description),
		EpochSeq:    seq,
		OrderIndex:  int(count) + 1,
	}
	if _, err := s.epoch.Create(ctx, nil, epoch); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindEpoch, &epoch.ID, types.AuditActionCreate, nil, epoch)
	return epoch, nil
}

func (s *epochService) Update(ctx context.Context, studyID, epochID uint, payload EpochUpdate) (*types.Epoch, error) {
	epoch, err := s.Get(ctx, studyID, epochID)
	if err != nil {
		return nil, err
	}
	before := *epoch
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return nil, apierr.Invalid("epoch name required")
		}
		epoch.Name = name
	}
	if payload.Label != nil {
		epoch.Label = trimPtr(payload.Label)
	}
	if payload.Description != nil {
		epoch.Description = trimPtr(payload.Description)
	}
	if err := s.epoch.Save(ctx, nil, epoch); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindEpoch, &epoch.ID, types.AuditActionUpdate, before, epoch)
	return epoch, nil
}

func (s *epochService) Delete(ctx context.Context, studyID, epochID uint) error {
	epoch, err := s.Get(ctx, studyID, epochID)
	if err != nil {
		return err
	}
	if err := s.epoch.ClearVisitReferences(ctx, nil, epochID); err != nil {
		return err
	}
	if err := s.epoch.DeleteByID(ctx, nil, epochID); err != nil {
		return err
	}
	if err := s.reindex(ctx, studyID); err != nil {
		return err
	}
	s.audit.Record(ctx, studyID, types.EntityKindEpoch, &epochID, types.AuditActionDelete, epoch, nil)
	return nil
}

func (s *epochService) Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, apierr.Invalid("order list required")
	}
	oldOrder, err := s.epoch.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]struct{}, len(oldOrder))
	for _, id := range oldOrder {
		existing[id] = struct{}{}
	}
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return nil, apierr.Invalid("order contains invalid epoch id %d", id)
		}
	}
	for idx, id := range order {
		if err := s.epoch.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return nil, err
		}
	}
	s.audit.RecordReorder(ctx, studyID, types.EntityKindEpoch, oldOrder, order)
	s.audit.Record(ctx, studyID, types.EntityKindEpoch, nil, types.AuditActionReorder,
		map[string][]uint{"old_order": oldOrder}, map[string][]uint{"new_order": order})
	return oldOrder, nil
}

func (s *epochService) reindex(ctx context.Context, studyID uint) error {
	ids, err := s.epoch.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return err
	}
	for idx, id := range ids {
		if err := s.epoch.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *epochService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}
