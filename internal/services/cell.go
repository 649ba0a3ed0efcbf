package services

import (
	"context"
	"strings"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

// Matrix is the live visit-by-activity view of one study.
type Matrix struct {
	Visits     []*types.Visit    `json:"visits"`
	Activities []*types.Activity `json:"activities"`
	Cells      []*types.Cell     `json:"cells"`
}

// SetCellResult reports the outcome of an upsert. Deleted is true when a
// blank status cleared an existing cell.
type SetCellResult struct {
	CellID  *uint  `json:"cell_id"`
	Status  string `json:"status"`
	Deleted bool   `json:"deleted"`
}

type CellService interface {
	SetCell(ctx context.Context, studyID, visitID, activityID uint, status string) (*SetCellResult, error)
	Matrix(ctx context.Context, studyID uint) (*Matrix, error)
}

type cellService struct {
	study    repos.StudyRepo
	visit    repos.VisitRepo
	activity repos.ActivityRepo
	cell     repos.CellRepo
	log      *logger.Logger
}

func NewCellService(study repos.StudyRepo, visit repos.VisitRepo, activity repos.ActivityRepo, cell repos.CellRepo, baseLog *logger.Logger) CellService {
	return &cellService{
		study:    study,
		visit:    visit,
		activity: activity,
		cell:     cell,
		log:      baseLog.With("service", "CellService"),
	}
}

// SetCell upserts one matrix intersection. A blank status deletes any
// existing row instead of storing an empty value, keeping the matrix sparse.
func (s *cellService) SetCell(ctx context.Context, studyID, visitID, activityID uint, status string) (*SetCellResult, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	existing, err := s.cell.Get(ctx, nil, studyID, visitID, activityID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		if existing != nil {
			if err := s.cell.DeleteByID(ctx, nil, existing.ID); err != nil {
				return nil, err
			}
			return &SetCellResult{CellID: &existing.ID, Status: "", Deleted: true}, nil
		}
		return &SetCellResult{Status: "", Deleted: false}, nil
	}
	if existing != nil {
		if err := s.cell.UpdateStatus(ctx, nil, existing.ID, status); err != nil {
			return nil, err
		}
		return &SetCellResult{CellID: &existing.ID, Status: status}, nil
	}
	cell := &types.Cell{
		StudyID:    studyID,
		VisitID:    visitID,
		ActivityID: activityID,
		Status:     status,
	}
	if _, err := s.cell.Create(ctx, nil, cell); err != nil {
		return nil, err
	}
	return &SetCellResult{CellID: &cell.ID, Status: status}, nil
}

func (s *cellService) Matrix(ctx context.Context, studyID uint) (*Matrix, error) {
	if err := s.requireStudy(ctx, studyID); err != nil {
		return nil, err
	}
	visits, err := s.visit.ListByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activity.ListByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	cells, err := s.cell.ListByStudy(ctx, nil, studyID)
	if err != nil {
		return nil, err
	}
	return &Matrix{Visits: visits, Activities: activities, Cells: cells}, nil
}

func (s *cellService) requireStudy(ctx context.Context, studyID uint) error {
	exists, err := s.study.Exists(ctx, nil, studyID)
	if err != nil {
		return err
	}
	if !exists {
		return apierr.NotFound("study %d not found", studyID)
	}
	return nil
}
