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

type StudyService interface {
	Create(ctx context.Context, name string, studyUID, studyLabel, studyDescription *string) (*types.Study, error)
	Get(ctx context.Context, studyID uint) (*types.Study, error)
	List(ctx context.Context) ([]*types.Study, error)
	Exists(ctx context.Context, studyID uint) error
}

type studyService struct {
	study repos.StudyRepo
	log   *logger.Logger
}

func NewStudyService(study repos.StudyRepo, baseLog *logger.Logger) StudyService {
	return &studyService{study: study, log: baseLog.With("service", "StudyService")}
}

func (s *studyService) Create(ctx context.Context, name string, studyUID, studyLabel, studyDescription *string) (*types.Study, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Invalid("study name required")
	}
	study := &types.Study{
		Name:             name,
		StudyUID:         trimPtr(studyUID),
		StudyLabel:       trimPtr(studyLabel),
		StudyDescription: trimPtr(studyDescription),
		CreatedAt:        time.Now().UTC(),
	}
	return s.study.Create(ctx, nil, study)
}

func (s *studyService) Get(ctx context.Context, studyID uint) (*types.Study, error) {
	study, err := s.study.GetByID(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, apierr.NotFound("study %d not found", studyID)
	}
	return study, nil
}

func (s *studyService) List(ctx context.Context) ([]*types.Study, error) {
	return s.study.List(ctx, nil)
}

func (s *studyService) Exists(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}

// trimPtr trims a nullable string, collapsing blank values to nil.
func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
