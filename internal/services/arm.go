package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

const armUIDPrefix = "StudyArm_"

type ArmCreate struct {
	Name           string  `json:"name"`
	Type           *string `json:"type,omitempty"`
	Description    *string `json:"description,omitempty"`
	DataOriginType *string `json:"data_origin_type,omitempty"`
}

type ArmUpdate struct {
	Name           *string `json:"name,omitempty"`
	Type           *string `json:"type,omitempty"`
	Description    *string `json:"description,omitempty"`
	DataOriginType *string `json:"data_origin_type,omitempty"`
}

type ArmService interface {
	List(ctx context.Context, studyID uint) ([]*types.Arm, error)
	Get(ctx context.Context, studyID, armID uint) (*types.Arm, error)
	Create(ctx context.Context, studyID uint, payload ArmCreate) (*types.Arm, error)
	Update(ctx context.Context, studyID, armID uint, payload ArmUpdate) (*types.Arm, error)
	Delete(ctx context.Context, studyID, armID uint) error
	Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error)
}

type armService struct {
	study repos.StudyRepo
	arm   repos.ArmRepo
	audit AuditService
	log   *logger.Logger
}

func NewArmService(study repos.StudyRepo, arm repos.ArmRepo, audit AuditService, baseLog *logger.Logger) ArmService {
	return &armService{
		study: study,
		arm:   arm,
		audit: audit,
		log:   baseLog.With("service", "ArmService"),
	}
}

func (s *armService) List(ctx context.Context, studyID uint) ([]*types.Arm, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.arm.ListByStudy(ctx, nil, studyID)
}

func (s *armService) Get(ctx context.Context, studyID, armID uint) (*types.Arm, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	arm, err := s.arm.GetByID(ctx, nil, studyID, armID)
	if err != nil {
		return nil, err
	}
	if arm == nil {
		return nil, apierr.NotFound("arm %d not found", armID)
	}
	return arm, nil
}

func (s *armService) Create(ctx context.Context, studyID uint, payload ArmCreate) (*types.Arm, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apierr.Invalid("arm name required")
	}
	uid, err := s.nextArmUID(ctx, studyID)
	if err != nil {
		return nil, err
	}
	max, err := s.arm.MaxOrderIndex(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	arm := &types.Arm{
		StudyID:        studyID,
		Name:           name,
		Type:           trimPtr(payload.Type),
		Description:    trimPtr(payload.Description),
		DataOriginType: trimPtr(payload.DataOriginType),
		ArmUID:         uid,
		OrderIndex:     max + 1,
	}
	if _, err := s.arm.Create(ctx, nil, arm); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindArm, &arm.ID, types.AuditActionCreate, nil, arm)
	return arm, nil
}

func (s *armService) Update(ctx context.Context, studyID, armID uint, payload ArmUpdate) (*types.Arm, error) {
	arm, err := s.Get(ctx, studyID, armID)
	if err != nil {
		return nil, err
	}
	before := *arm
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return nil, apierr.Invalid("arm name required")
		}
		arm.Name = name
	}
	if payload.Type != nil {
		arm.Type = trimPtr(payload.Type)
	}
	if payload.Description != nil {
		arm.Description = trimPtr(payload.Description)
	}
	if payload.DataOriginType != nil {
		arm.DataOriginType = trimPtr(payload.DataOriginType)
	}
	if err := s.arm.Save(ctx, nil, arm); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindArm, &arm.ID, types.AuditActionUpdate, before, arm)
	return arm, nil
}

func (s *armService) Delete(ctx context.Context, studyID, armID uint) error {
	arm, err := s.Get(ctx, studyID, armID)
	if err != nil {
		return err
	}
	if err := s.arm.DeleteByID(ctx, nil, armID); err != nil {
		return err
	}
	if err := s.reindex(ctx, studyID); err != nil {
		return err
	}
	s.audit.Record(ctx, studyID, types.EntityKindArm, &armID, types.AuditActionDelete, arm, nil)
	return nil
}

func (s *armService) Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, apierr.Invalid("order list required")
	}
	oldOrder, err := s.arm.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]struct{}, len(oldOrder))
	for _, id := range oldOrder {
		existing[id] = struct{}{}
	}
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return nil, apierr.Invalid("order contains invalid arm id %d", id)
		}
	}
	for idx, id := range order {
		if err := s.arm.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return nil, err
		}
	}
	s.audit.RecordReorder(ctx, studyID, types.EntityKindArm, oldOrder, order)
	s.audit.Record(ctx, studyID, types.EntityKindArm, nil, types.AuditActionReorder,
		map[string][]uint{"old_order": oldOrder}, map[string][]uint{"new_order": order})
	return oldOrder, nil
}

// nextArmUID picks the smallest positive n such that StudyArm_<n> is not
// already taken within the study. Deleted arms free their number for reuse.
func (s *armService) nextArmUID(ctx context.Context, studyID uint) (string, error) {
	uids, err := s.arm.UIDsByStudy(ctx, nil, studyID)
	if err != nil {
		return "", err
	}
	taken := make(map[int]struct{}, len(uids))
	for _, uid := range uids {
		if !strings.HasPrefix(uid, armUIDPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(uid, armUIDPrefix))
		if err != nil || n < 1 {
			continue
		}
		taken[n] = struct{}{}
	}
	n := 1
	for {
		if _, ok := taken[n]; !ok {
			return fmt.Sprintf("%s%d", armUIDPrefix, n), nil
		}
		n++
	}
}

func (s *armService) reindex(ctx context.Context, studyID uint) error {
	ids, err := s.arm.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return err
	}
	for idx, id := range ids {
		if err := s.arm.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *armService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}
