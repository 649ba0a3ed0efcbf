package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/snapshot"
	"github.com/soabuilder/soa-backend/internal/types"
)

// FreezeView is a decoded snapshot row. Snapshot is nil and Corrupt true when
// the stored payload cannot be parsed; display paths degrade instead of
// failing.
type FreezeView struct {
	ID           uint               `json:"id"`
	VersionLabel string             `json:"version_label"`
	CreatedAt    time.Time          `json:"created_at"`
	Snapshot     *snapshot.Payload  `json:"snapshot,omitempty"`
	Corrupt      bool               `json:"-"`
}

// FreezeService captures immutable point-in-time snapshots of a study's live
// collections. Capture is a pure read-and-copy: live data is never touched.
type FreezeService interface {
	Create(ctx context.Context, studyID uint, versionLabel string) (*types.Freeze, error)
	List(ctx context.Context, studyID uint) ([]*types.Freeze, error)
	Get(ctx context.Context, studyID, freezeID uint) (*FreezeView, error)
}

type freezeService struct {
	db       *gorm.DB
	study    repos.StudyRepo
	visit    repos.VisitRepo
	activity repos.ActivityRepo
	cell     repos.CellRepo
	element  repos.ElementRepo
	epoch    repos.EpochRepo
	arm      repos.ArmRepo
	concept  repos.ActivityConceptRepo
	freeze   repos.FreezeRepo
	log      *logger.Logger
}

func NewFreezeService(db *gorm.DB, study repos.StudyRepo, visit repos.VisitRepo, activity repos.ActivityRepo, cell repos.CellRepo, element repos.ElementRepo, epoch repos.EpochRepo, arm repos.ArmRepo, concept repos.ActivityConceptRepo, freeze repos.FreezeRepo, baseLog *logger.Logger) FreezeService {
	return &freezeService{
		db:       db,
		study:    study,
		visit:    visit,
		activity: activity,
		cell:     cell,
		element:  element,
		epoch:    epoch,
		arm:      arm,
		concept:  concept,
		freeze:   freeze,
		log:      baseLog.With("service", "FreezeService"),
	}
}

func (s *freezeService) Create(ctx context.Context, studyID uint, versionLabel string) (*types.Freeze, error) {
	var created *types.Freeze
	// One transaction boundary: the snapshot either lands whole or not at all,
	// and the collection reads inside it are one consistent pass.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		study, err := s.study.GetByID(ctx, tx, studyID)
		if err != nil {
			return err
		}
		if study == nil {
			return apierr.NotFound("study %d not found", studyID)
		}

		existing, err := s.freeze.LabelsByStudy(ctx, tx, studyID)
		if err != nil {
			return err
		}
		label, err := resolveVersionLabel(versionLabel, existing)
		if err != nil {
			return err
		}

		payload, err := s.capture(ctx, tx, study, label)
		if err != nil {
			return err
		}
		data, err := snapshot.Encode(payload)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		created, err = s.freeze.Create(ctx, tx, &types.Freeze{
			StudyID:      studyID,
			VersionLabel: label,
			CreatedAt:    time.Now().UTC(),
			Snapshot:     datatypes.JSON(data),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created freeze", "soa_id", studyID, "freeze_id", created.ID, "version_label", created.VersionLabel)
	return created, nil
}

func (s *freezeService) capture(ctx context.Context, tx *gorm.DB, study *types.Study, label string) (*snapshot.Payload, error) {
	visits, err := s.visit.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activity.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}
	cells, err := s.cell.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}
	elements, err := s.element.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}
	epochs, err := s.epoch.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}
	arms, err := s.arm.ListByStudy(ctx, tx, study.ID)
	if err != nil {
		return nil, err
	}

	activityIDs := make([]uint, 0, len(activities))
	for _, a := range activities {
		activityIDs = append(activityIDs, a.ID)
	}
	concepts, err := s.concept.ListByActivityIDs(ctx, tx, activityIDs)
	if err != nil {
		return nil, err
	}

	p := &snapshot.Payload{
		SchemaVersion:    snapshot.SchemaVersion,
		StudyID:          study.ID,
		StudyName:        study.Name,
		VersionLabel:     label,
		FrozenAt:         time.Now().UTC(),
		Visits:           make([]snapshot.VisitRecord, 0, len(visits)),
		Activities:       make([]snapshot.ActivityRecord, 0, len(activities)),
		Cells:            make([]snapshot.CellRecord, 0, len(cells)),
		Elements:         make([]snapshot.ElementRecord, 0, len(elements)),
		Epochs:           make([]snapshot.EpochRecord, 0, len(epochs)),
		Arms:             make([]snapshot.ArmRecord, 0, len(arms)),
		ActivityConcepts: make(map[uint][]snapshot.ConceptRecord),
	}
	for _, v := range visits {
		p.Visits = append(p.Visits, snapshot.VisitRecord{
			ID:         v.ID,
			Name:       v.Name,
			RawHeader:  v.RawHeader,
			OrderIndex: v.OrderIndex,
			EpochID:    v.EpochID,
		})
	}
	for _, a := range activities {
		p.Activities = append(p.Activities, snapshot.ActivityRecord{
			ID:          a.ID,
			Name:        a.Name,
			OrderIndex:  a.OrderIndex,
			ActivityUID: a.ActivityUID,
		})
	}
	for _, c := range cells {
		// Sparse matrix rule: blank statuses are never materialized.
		if strings.TrimSpace(c.Status) == "" {
			continue
		}
		p.Cells = append(p.Cells, snapshot.CellRecord{
			VisitID:    c.VisitID,
			ActivityID: c.ActivityID,
			Status:     c.Status,
		})
	}
	for _, e := range elements {
		p.Elements = append(p.Elements, snapshot.ElementRecord{
			ID:          e.ID,
			Name:        e.Name,
			Label:       e.Label,
			Description: e.Description,
			StartRule:   e.StartRule,
			EndRule:     e.EndRule,
			OrderIndex:  e.OrderIndex,
		})
	}
	for _, e := range epochs {
		p.Epochs = append(p.Epochs, snapshot.EpochRecord{
			ID:          e.ID,
			Name:        e.Name,
			OrderIndex:  e.OrderIndex,
			EpochSeq:    e.EpochSeq,
			Label:       e.Label,
			Description: e.Description,
		})
	}
	for _, a := range arms {
		p.Arms = append(p.Arms, snapshot.ArmRecord{
			ID:             a.ID,
			Name:           a.Name,
			Label:          a.Label,
			Description:    a.Description,
			Type:           a.Type,
			DataOriginType: a.DataOriginType,
			OrderIndex:     a.OrderIndex,
			ArmUID:         a.ArmUID,
		})
	}
	for _, c := range concepts {
		p.ActivityConcepts[c.ActivityID] = append(p.ActivityConcepts[c.ActivityID], snapshot.ConceptRecord{
			Code:  c.ConceptCode,
			Title: c.ConceptTitle,
		})
	}
	return p, nil
}

func (s *freezeService) List(ctx context.Context, studyID uint) ([]*types.Freeze, error) {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NotFound("study %d not found", studyID)
	}
	return s.freeze.ListByStudy(ctx, nil, studyID)
}

func (s *freezeService) Get(ctx context.Context, studyID, freezeID uint) (*FreezeView, error) {
	freeze, err := s.freeze.GetByID(ctx, nil, studyID, freezeID)
	if err != nil {
		return nil, err
	}
	if freeze == nil {
		return nil, apierr.NotFound("freeze %d not found", freezeID)
	}
	view := &FreezeView{
		ID:           freeze.ID,
		VersionLabel: freeze.VersionLabel,
		CreatedAt:    freeze.CreatedAt,
	}
	payload, err := snapshot.Decode(freeze.Snapshot)
	if err != nil {
		s.log.Warn("Corrupt snapshot payload", "soa_id", studyID, "freeze_id", freezeID, "error", err)
		view.Corrupt = true
		return view, nil
	}
	view.Snapshot = payload
	return view, nil
}

// resolveVersionLabel trims a supplied label, rejecting collisions, or
// allocates the smallest unused v<n> when none is supplied.
func resolveVersionLabel(supplied string, existing []string) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		taken[l] = struct{}{}
	}
	label := strings.TrimSpace(supplied)
	if label == "" {
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("v%d", n)
			if _, ok := taken[candidate]; !ok {
				return candidate, nil
			}
		}
	}
	if _, ok := taken[label]; ok {
		return "", apierr.Conflict("version label %q already exists for this study", label)
	}
	return label, nil
}
