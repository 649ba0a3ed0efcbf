package services

import (
	"context"
	"strings"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

// ConceptAssignment is one code/title pair to attach to an activity. The
// title is captured at assignment time and never refreshed afterwards, so
// later terminology renames do not rewrite history.
type ConceptAssignment struct {
	Code  string `json:"code"`
	Title string `json:"title,omitempty"`
}

type ConceptService interface {
	ListByActivity(ctx context.Context, studyID, activityID uint) ([]*types.ActivityConcept, error)
	SetActivityConcepts(ctx context.Context, studyID, activityID uint, assignments []ConceptAssignment) ([]*types.ActivityConcept, error)
}

type conceptService struct {
	study    repos.StudyRepo
	activity repos.ActivityRepo
	concept  repos.ActivityConceptRepo
	log      *logger.Logger
}

func NewConceptService(study repos.StudyRepo, activity repos.ActivityRepo, concept repos.ActivityConceptRepo, baseLog *logger.Logger) ConceptService {
	return &conceptService{
		study:    study,
		activity: activity,
		concept:  concept,
		log:      baseLog.With("service", "ConceptService"),
	}
}

func (s *conceptService) ListByActivity(ctx context.Context, studyID, activityID uint) ([]*types.ActivityConcept, error) {
	if err := s.requireActivity(ctx, studyID, activityID); err != nil {
		return nil, err
	}
	return s.concept.ListByActivity(ctx, nil, activityID)
}

// SetActivityConcepts replaces the activity's concept set wholesale.
// Duplicate and blank codes are dropped; a blank title copies the code.
func (s *conceptService) SetActivityConcepts(ctx context.Context, studyID, activityID uint, assignments []ConceptAssignment) ([]*types.ActivityConcept, error) {
	if err := s.requireActivity(ctx, studyID, activityID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(assignments))
	concepts := make([]*types.ActivityConcept, 0, len(assignments))
	for _, assignment := range assignments {
		code := strings.TrimSpace(assignment.Code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		title := strings.TrimSpace(assignment.Title)
		if title == "" {
			title = code
		}
		concepts = append(concepts, &types.ActivityConcept{
			ActivityID:   activityID,
			ConceptCode:  code,
			ConceptTitle: title,
		})
	}

	if err := s.concept.DeleteByActivity(ctx, nil, activityID); err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		return []*types.ActivityConcept{}, nil
	}
	created, err := s.concept.Create(ctx, nil, concepts)
	if err != nil {
		return nil, err
	}
	s.log.Debug("replaced activity concepts", "activity_id", activityID, "count", len(created))
	return created, nil
}

func (s *conceptService) requireActivity(ctx context.Context, studyID, activityID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	activity, err := s.activity.GetByID(ctx, nil, studyID, activityID)
	if err != nil {
		return err
	}
	if activity == nil {
		return apierr.NotFound("activity %d not found", activityID)
	}
	return nil
}
