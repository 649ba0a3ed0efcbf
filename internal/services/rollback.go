package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/snapshot"
	"github.com/soabuilder/soa-backend/internal/types"
)

// RestoreCounts reports exactly how many rows each collection received.
type RestoreCounts struct {
	FreezeID   uint `json:"rollback_freeze_id"`
	Visits     int  `json:"visits_restored"`
	Activities int  `json:"activities_restored"`
	Cells      int  `json:"cells_restored"`
	Concepts   int  `json:"concept_mappings_restored"`
	Elements   int  `json:"elements_restored"`
}

// RollbackPreview reports what a rollback would restore, without writing.
type RollbackPreview struct {
	FreezeID     uint   `json:"freeze_id"`
	VersionLabel string `json:"version_label"`
	Visits       int    `json:"visits_to_restore"`
	Activities   int    `json:"activities_to_restore"`
	Cells        int    `json:"cells_to_restore"`
	Concepts     int    `json:"concept_mappings_to_restore"`
	Elements     int    `json:"elements_to_restore"`
}

// RollbackService replaces a study's live visit/activity/cell/element/concept
// collections with the contents of a prior snapshot, under fresh primary
// keys. Arms, epochs, snapshots and audit history are never touched.
type RollbackService interface {
	Rollback(ctx context.Context, studyID, freezeID uint) (*RestoreCounts, error)
	Preview(ctx context.Context, studyID, freezeID uint) (*RollbackPreview, error)
}

type rollbackService struct {
	db       *gorm.DB
	freeze   repos.FreezeRepo
	visit    repos.VisitRepo
	activity repos.ActivityRepo
	cell     repos.CellRepo
	element  repos.ElementRepo
	concept  repos.ActivityConceptRepo
	audit    AuditService
	log      *logger.Logger
}

func NewRollbackService(db *gorm.DB, freeze repos.FreezeRepo, visit repos.VisitRepo, activity repos.ActivityRepo, cell repos.CellRepo, element repos.ElementRepo, concept repos.ActivityConceptRepo, audit AuditService, baseLog *logger.Logger) RollbackService {
	return &rollbackService{
		db:       db,
		freeze:   freeze,
		visit:    visit,
		activity: activity,
		cell:     cell,
		element:  element,
		concept:  concept,
		audit:    audit,
		log:      baseLog.With("service", "RollbackService"),
	}
}

func (s *rollbackService) Rollback(ctx context.Context, studyID, freezeID uint) (*RestoreCounts, error) {
	payload, err := s.loadPayload(ctx, studyID, freezeID)
	if err != nil {
		return nil, err
	}

	counts := &RestoreCounts{FreezeID: freezeID}
	// One transaction boundary: an interrupted rollback must never leave the
	// live store partially rewritten.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Delete order matters: cells first, then concept mappings while the
		// activity rows they reference still exist, then the entity rows.
		if err := s.cell.DeleteByStudy(ctx, tx, studyID); err != nil {
			return err
		}
		if err := s.concept.DeleteByStudy(ctx, tx, studyID); err != nil {
			return err
		}
		if err := s.activity.DeleteByStudy(ctx, tx, studyID); err != nil {
			return err
		}
		if err := s.visit.DeleteByStudy(ctx, tx, studyID); err != nil {
			return err
		}
		if err := s.element.DeleteByStudy(ctx, tx, studyID); err != nil {
			return err
		}

		visitIDMap, err := s.restoreVisits(ctx, tx, studyID, payload.Visits)
		if err != nil {
			return err
		}
		counts.Visits = len(visitIDMap)

		activityIDMap, err := s.restoreActivities(ctx, tx, studyID, payload.Activities)
		if err != nil {
			return err
		}
		counts.Activities = len(activityIDMap)

		counts.Elements, err = s.restoreElements(ctx, tx, studyID, payload.Elements)
		if err != nil {
			return err
		}

		counts.Cells, err = s.restoreCells(ctx, tx, studyID, payload.Cells, visitIDMap, activityIDMap)
		if err != nil {
			return err
		}

		counts.Concepts, err = s.restoreConcepts(ctx, tx, payload.ActivityConcepts, activityIDMap)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Rolled back study to freeze",
		"soa_id", studyID,
		"freeze_id", freezeID,
		"visits_restored", counts.Visits,
		"activities_restored", counts.Activities,
		"cells_restored", counts.Cells,
		"concepts_restored", counts.Concepts,
		"elements_restored", counts.Elements,
	)
	s.audit.RecordRollback(ctx, studyID, freezeID, *counts)
	return counts, nil
}

func (s *rollbackService) Preview(ctx context.Context, studyID, freezeID uint) (*RollbackPreview, error) {
	freeze, err := s.freeze.GetByID(ctx, nil, studyID, freezeID)
	if err != nil {
		return nil, err
	}
	if freeze == nil {
		return nil, apierr.NotFound("freeze %d not found", freezeID)
	}
	payload, err := snapshot.Decode(freeze.Snapshot)
	if err != nil {
		return nil, err
	}
	cells := 0
	for _, c := range payload.Cells {
		if strings.TrimSpace(c.Status) != "" {
			cells++
		}
	}
	concepts := 0
	for _, list := range payload.ActivityConcepts {
		concepts += len(list)
	}
	return &RollbackPreview{
		FreezeID:     freezeID,
		VersionLabel: freeze.VersionLabel,
		Visits:       len(payload.Visits),
		Activities:   len(payload.Activities),
		Cells:        cells,
		Concepts:     concepts,
		Elements:     len(payload.Elements),
	}, nil
}

func (s *rollbackService) loadPayload(ctx context.Context, studyID, freezeID uint) (*snapshot.Payload, error) {
	freeze, err := s.freeze.GetByID(ctx, nil, studyID, freezeID)
	if err != nil {
		return nil, err
	}
	if freeze == nil {
		return nil, apierr.NotFound("freeze %d not found", freezeID)
	}
	payload, err := snapshot.Decode(freeze.Snapshot)
	if err != nil {
		return nil, err
	}
	// Cross-study guard: a snapshot can only be replayed into the study it
	// was captured from.
	if payload.StudyID != studyID {
		return nil, apierr.Invalid("snapshot belongs to study %d, not study %d", payload.StudyID, studyID)
	}
	return payload, nil
}

// restoreVisits reinserts visits in captured order under fresh ids and
// returns the old-id to new-id map dependent collections resolve through.
func (s *rollbackService) restoreVisits(ctx context.Context, tx *gorm.DB, studyID uint, records []snapshot.VisitRecord) (map[uint]uint, error) {
	sorted := make([]snapshot.VisitRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })

	idMap := make(map[uint]uint, len(sorted))
	for _, rec := range sorted {
		rawHeader := rec.RawHeader
		if rawHeader == "" {
			rawHeader = rec.Name
		}
		visit := &types.Visit{
			StudyID:    studyID,
			Name:       rec.Name,
			RawHeader:  rawHeader,
			OrderIndex: rec.OrderIndex,
			EpochID:    rec.EpochID,
		}
		if _, err := s.visit.Create(ctx, tx, visit); err != nil {
			return nil, err
		}
		idMap[rec.ID] = visit.ID
	}
	return idMap, nil
}

func (s *rollbackService) restoreActivities(ctx context.Context, tx *gorm.DB, studyID uint, records []snapshot.ActivityRecord) (map[uint]uint, error) {
	sorted := make([]snapshot.ActivityRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })

	idMap := make(map[uint]uint, len(sorted))
	for _, rec := range sorted {
		uid := rec.ActivityUID
		if uid == "" {
			uid = activityUID(rec.OrderIndex)
		}
		activity := &types.Activity{
			StudyID:     studyID,
			Name:        rec.Name,
			OrderIndex:  rec.OrderIndex,
			ActivityUID: uid,
		}
		if _, err := s.activity.Create(ctx, tx, activity); err != nil {
			return nil, err
		}
		idMap[rec.ID] = activity.ID
	}
	return idMap, nil
}

func (s *rollbackService) restoreElements(ctx context.Context, tx *gorm.DB, studyID uint, records []snapshot.ElementRecord) (int, error) {
	sorted := make([]snapshot.ElementRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })

	for _, rec := range sorted {
		element := &types.Element{
			StudyID:     studyID,
			Name:        rec.Name,
			Label:       rec.Label,
			Description: rec.Description,
			StartRule:   rec.StartRule,
			EndRule:     rec.EndRule,
			OrderIndex:  rec.OrderIndex,
			CreatedAt:   time.Now().UTC(),
		}
		if _, err := s.element.Create(ctx, tx, element); err != nil {
			return 0, err
		}
	}
	return len(sorted), nil
}

// restoreCells replays the sparse-matrix rule: blank statuses are skipped,
// and a cell whose captured visit or activity id does not resolve through
// the id maps is skipped rather than failing the whole rollback.
func (s *rollbackService) restoreCells(ctx context.Context, tx *gorm.DB, studyID uint, records []snapshot.CellRecord, visitIDMap, activityIDMap map[uint]uint) (int, error) {
	inserted := 0
	for _, rec := range records {
		status := strings.TrimSpace(rec.Status)
		if status == "" {
			continue
		}
		newVisitID, okV := visitIDMap[rec.VisitID]
		newActivityID, okA := activityIDMap[rec.ActivityID]
		if !okV || !okA {
			s.log.Warn("Skipping unresolvable cell during rollback", "visit_id", rec.VisitID, "activity_id", rec.ActivityID)
			continue
		}
		cell := &types.Cell{
			StudyID:    studyID,
			VisitID:    newVisitID,
			ActivityID: newActivityID,
			Status:     status,
		}
		if _, err := s.cell.Create(ctx, tx, cell); err != nil {
			return 0, err
		}
		inserted++
	}
	return inserted, nil
}

// restoreConcepts reinserts mappings using the titles captured inside the
// snapshot, never a live lookup.
func (s *rollbackService) restoreConcepts(ctx context.Context, tx *gorm.DB, conceptMap map[uint][]snapshot.ConceptRecord, activityIDMap map[uint]uint) (int, error) {
	aids := make([]uint, 0, len(conceptMap))
	for aid := range conceptMap {
		aids = append(aids, aid)
	}
	sort.Slice(aids, func(i, j int) bool { return aids[i] < aids[j] })

	inserted := 0
	for _, oldAID := range aids {
		newAID, ok := activityIDMap[oldAID]
		if !ok {
			s.log.Warn("Skipping concept mappings for unresolvable activity during rollback", "activity_id", oldAID)
			continue
		}
		for _, rec := range conceptMap[oldAID] {
			if rec.Code == "" {
				continue
			}
			title := rec.Title
			if title == "" {
				title = rec.Code
			}
			concept := &types.ActivityConcept{
				ActivityID:   newAID,
				ConceptCode:  rec.Code,
				ConceptTitle: title,
			}
			if _, err := s.concept.Create(ctx, tx, []*types.ActivityConcept{concept}); err != nil {
				return 0, err
			}
			inserted++
		}
	}
	return inserted, nil
}
