package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

type VisitUpdate struct {
	Name      *string `json:"name,omitempty"`
	RawHeader *string `json:"raw_header,omitempty"`
	EpochID   *uint   `json:"epoch_id,omitempty"`
}

type VisitService interface {
	List(ctx context.Context, studyID uint) ([]*types.Visit, error)
	Get(ctx context.Context, studyID, visitID uint) (*types.Visit, error)
	Create(ctx context.Context, studyID uint, name, rawHeader string, epochID *uint) (*types.Visit, error)
	Update(ctx context.Context, studyID, visitID uint, update VisitUpdate) (*types.Visit, error)
	Delete(ctx context.Context, studyID, visitID uint) error
	Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error)
}

type visitService struct {
	db    *gorm.DB
	study repos.StudyRepo
	visit repos.VisitRepo
	epoch repos.EpochRepo
	cell  repos.CellRepo
	audit AuditService
	log   *logger.Logger
}

func NewVisitService(db *gorm.DB, study repos.StudyRepo, visit repos.VisitRepo, epoch repos.EpochRepo, cell repos.CellRepo, audit AuditService, baseLog *logger.Logger) VisitService {
	return &visitService{
		db:    db,
		study: study,
		visit: visit,
		epoch: epoch,
		cell:  cell,
		audit: audit,
		log:   baseLog.With("service", "VisitService"),
	}
}

func (s *visitService) List(ctx context.Context, studyID uint) ([]*types.Visit, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	return s.visit.ListByStudy(ctx, nil, studyID)
}

func (s *visitService) Get(ctx context.Context, studyID, visitID uint) (*types.Visit, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	visit, err := s.visit.GetByID(ctx, nil, studyID, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, apierr.NotFound("visit %d not found", visitID)
	}
	return visit, nil
}

func (s *visitService) Create(ctx context.Context, studyID uint, name, rawHeader string, epochID *uint) (*types.Visit, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if epochID != nil {
		if err := s.requireEpoch(ctx, studyID, *epochID); err != nil {
			return nil, err
		}
	}
	count, err := s.visit.CountByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	if rawHeader == "" {
		rawHeader = name
	}
	visit := &types.Visit{
		StudyID:    studyID,
		Name:       name,
		RawHeader:  rawHeader,
		OrderIndex: int(count) + 1,
		EpochID:    epochID,
	}
	if _, err := s.visit.Create(ctx, nil, visit); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindVisit, &visit.ID, types.AuditActionCreate, nil, visit)
	return visit, nil
}

func (s *visitService) Update(ctx context.Context, studyID, visitID uint, update VisitUpdate) (*types.Visit, error) {
	visit, err := s.Get(ctx, studyID, visitID)
	if err != nil {
		return nil, err
	}
	before := *visit
	if update.EpochID != nil {
		if err := s.requireEpoch(ctx, studyID, *update.EpochID); err != nil {
			return nil, err
		}
		visit.EpochID = update.EpochID
	}
	if update.Name != nil {
		visit.Name = strings.TrimSpace(*update.Name)
	}
	if update.RawHeader != nil {
		visit.RawHeader = strings.TrimSpace(*update.RawHeader)
	}
	if visit.RawHeader == "" {
		visit.RawHeader = visit.Name
	}
	if err := s.visit.Save(ctx, nil, visit); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, studyID, types.EntityKindVisit, &visit.ID, types.AuditActionUpdate, before, visit)
	return visit, nil
}

// Delete cascades the visit's matrix cells, then closes the order_index gap
// so the sequence stays dense 1..N. The whole cascade commits as one
// transaction.
func (s *visitService) Delete(ctx context.Context, studyID, visitID uint) error {
	visit, err := s.Get(ctx, studyID, visitID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.cell.DeleteByVisit(ctx, tx, studyID, visitID); err != nil {
			return err
		}
		if err := s.visit.DeleteByID(ctx, tx, visitID); err != nil {
			return err
		}
		return s.reindex(ctx, tx, studyID)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, studyID, types.EntityKindVisit, &visitID, types.AuditActionDelete, visit, nil)
	return nil
}

func (s *visitService) Reorder(ctx context.Context, studyID uint, order []uint) ([]uint, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, apierr.Invalid("order list required")
	}
	oldOrder, err := s.visit.IDsByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]struct{}, len(oldOrder))
	for _, id := range oldOrder {
		existing[id] = struct{}{}
	}
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return nil, apierr.Invalid("order contains invalid visit id %d", id)
		}
	}
	for idx, id := range order {
		if err := s.visit.SetOrderIndex(ctx, nil, id, idx+1); err != nil {
			return nil, err
		}
	}
	s.audit.RecordReorder(ctx, studyID, types.EntityKindVisit, oldOrder, order)
	s.audit.Record(ctx, studyID, types.EntityKindVisit, nil, types.AuditActionReorder,
		map[string][]uint{"old_order": oldOrder}, map[string][]uint{"new_order": order})
	return oldOrder, nil
}

func (s *visitService) reindex(ctx context.Context, tx *gorm.DB, studyID uint) error {
	ids, err := s.visit.IDsByStudy(ctx, tx, studyID)
	if err != nil {
		return err
	}
	for idx, id := range ids {
		if err := s.visit.SetOrderIndex(ctx, tx, id, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *visitService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}

func (s *visitService) requireEpoch(ctx context.Context, studyID, epochID uint) error {
	epoch, err := s.epoch.GetByID(ctx, nil, studyID, epochID)
	if err != nil {
		return err
	}
	if epoch == nil {
		return apierr.Invalid("invalid epoch_id for this study")
	}
	return nil
}
