package services

import (
	"context"
	"strings"
	"time"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

type ElementCreate struct {
	Name        string  `json:"name"`
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
	StartRule   *string `json:"testrl,omitempty"`
	EndRule     *string `json:"teenrl,omitempty"`
}

type ElementUpdate struct {
	Name        *string `json:"name,omitempty"`
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
	StartRule   *string `json:"testrl,omitempty"`
	EndRule     *string `json:"teenrl,omitempty"`
}

type ElementService interface {
	List(ctx context.Context, studyID uint) ([]*types.Element, error)
	Get(ctx context.Context, studyID, elementID uint) (*types.Element, error)
	Create(ctx context.Context, studyID uint, payload ElementCreate) (*types.Element, error)
	Update(ctx context.Context, studyID, elementID uint, payload ElementUpdate) (*types.Element, error)
	Delete(ctx context.Context, studyID, elementID uint) error
	Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error)
}

type elementService struct {
	study   repos.StudyRepo
	element repos.ElementRepo
	audit   AuditService
	log     *logger.Logger
}

func NewElementService(study repos.StudyRepo, element repos.ElementRepo, audit AuditService, baseLog *logger.Logger) ElementService {
	return &elementService{
		study:   study,
		element: element,
		audit:   audit,
		log:     baseLog.With("service", "ElementService"),
	}
}

func (s *elementService) List(ctx context.Context, studyID uint) ([]*types.Element, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.element.ListByStudy(ctx, nil, studyID)
}

func (s *elementService) Get(ctx context.Context, studyID, elementID uint) (*types.Element, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	element, err := s.element.GetByID(ctx, nil, studyID, elementID)
	if err != nil {
		return nil, err
	}
	if element == nil {
		return nil, apierr.NotFound("element %d not found", elementID)
	}
	return element, nil
}

func (s *elementService) Create(ctx context.Context, studyID uint, payload ElementCreate) (*types.Element, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apierr.Invalid("element name required")
	}
	max, err := s.element.MaxOrderIndex(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	element := &types.Element{
		StudyID:     studyID,
		Name:        name,
		Label:       trimPtr(payload.Label),
		Description: trimPtr(payload.Description),
		StartRule:   trimPtr(payload.StartRule),
		EndRule:     trimPtr(payload.EndRule),
		OrderIndex:  max + 1,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.element.Create(ctx, nil, element); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindElement, &element.ID, types.AuditActionCreate, nil, element)
	return element, nil
}

func (s *elementService) Update(ctx context.Context, studyID, elementID uint, payload ElementUpdate) (*types.Element, error) {
	element, err := s.Get(ctx, studyID, elementID)
	if err != nil {
		return nil, err
	}
	before := *element
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return nil, apierr.Invalid("element name required")
		}
		element.Name = name
	}
	if payload.Label != nil {
		element.Label = trimPtr(payload.Label)
	}
	if payload.Description != nil {
		element.Description = trimPtr(payload.Description)
	}
	if payload.StartRule != nil {
		element.StartRule = trimPtr(payload.StartRule)
	}
	if payload.EndRule != nil {
		element.EndRule = trimPtr(payload.EndRule)
	}
	if err := s.element.Save(ctx, nil, element); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindElement, &element.ID, types.AuditActionUpdate, before, element)
	return element, nil
}

func (s *elementService) Delete(ctx context.Context, studyID, elementID uint) error {
	element, err := s.Get(ctx, studyID, elementID)
	if err != nil {
		return err
	}
	if err := s.element.DeleteByID(ctx, nil, elementID); err != nil {
		return err
	}
	if err := s.reindex(ctx, studyID); err != nil {
		return err
	}
	s.audit.Record(ctx, studyID, types.EntityKindElement, &elementID, types.AuditActionDelete, element, nil)
	return nil
}

func (s *elementService) Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, apierr.Invalid("order list required")
	}
	oldOrder, err := s.element.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]struct{}, len(oldOrder))
	for _, id := range oldOrder {
		existing[id] = struct{}{}
	}
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return nil, apierr.Invalid("order contains invalid element id %d", id)
		}
	}
	for idx, id := range order {
		if err := s.element.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return nil, err
		}
	}
	s.audit.RecordReorder(ctx, studyID, types.EntityKindElement, oldOrder, order)
	s.audit.Record(ctx, studyID, types.EntityKindElement, nil, types.AuditActionReorder,
		map[string][]uint{"old_order": oldOrder}, map[string][]uint{"new_order": order})
	return oldOrder, nil
}

func (s *elementService) reindex(ctx context.Context, studyID uint) error {
	ids, err := s.element.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return err
	}
	for idx, id := range ids {
		if err := s.element.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *elementService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}
