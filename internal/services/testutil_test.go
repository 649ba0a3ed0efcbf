package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/types"
)

// fixture wires the full service stack over a throwaway sqlite file.
type fixture struct {
	db *gorm.DB

	studyRepo   repos.StudyRepo
	visitRepo   repos.VisitRepo
	cellRepo    repos.CellRepo
	conceptRepo repos.ActivityConceptRepo

	audit    AuditService
	study    StudyService
	visit    VisitService
	activity ActivityService
	cell     CellService
	element  ElementService
	epoch    EpochService
	arm      ArmService
	concept  ConceptService
	freeze   FreezeService
	diff     DiffService
	rollback RollbackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&types.Study{},
		&types.Visit{},
		&types.Activity{},
		&types.Cell{},
		&types.Element{},
		&types.Epoch{},
		&types.Arm{},
		&types.ActivityConcept{},
		&types.Freeze{},
		&types.EntityAudit{},
		&types.RollbackAudit{},
		&types.ReorderAudit{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	studyRepo := repos.NewStudyRepo(db, log)
	visitRepo := repos.NewVisitRepo(db, log)
	activityRepo := repos.NewActivityRepo(db, log)
	cellRepo := repos.NewCellRepo(db, log)
	elementRepo := repos.NewElementRepo(db, log)
	epochRepo := repos.NewEpochRepo(db, log)
	armRepo := repos.NewArmRepo(db, log)
	conceptRepo := repos.NewActivityConceptRepo(db, log)
	freezeRepo := repos.NewFreezeRepo(db, log)
	entityAuditRepo := repos.NewEntityAuditRepo(db, log)
	rollbackAuditRepo := repos.NewRollbackAuditRepo(db, log)
	reorderAuditRepo := repos.NewReorderAuditRepo(db, log)

	audit := NewAuditService(entityAuditRepo, rollbackAuditRepo, reorderAuditRepo, log)

	return &fixture{
		db:          db,
		studyRepo:   studyRepo,
		visitRepo:   visitRepo,
		cellRepo:    cellRepo,
		conceptRepo: conceptRepo,
		audit:       audit,
		study:       NewStudyService(studyRepo, log),
		visit:       NewVisitService(db, studyRepo, visitRepo, epochRepo, cellRepo, audit, log),
		activity:    NewActivityService(db, studyRepo, activityRepo, cellRepo, conceptRepo, audit, log),
		cell:        NewCellService(studyRepo, visitRepo, activityRepo, cellRepo, log),
		element:     NewElementService(studyRepo, elementRepo, audit, log),
		epoch:       NewEpochService(studyRepo, epochRepo, audit, log),
		arm:         NewArmService(studyRepo, armRepo, audit, log),
		concept:     NewConceptService(studyRepo, activityRepo, conceptRepo, log),
		freeze:      NewFreezeService(db, studyRepo, visitRepo, activityRepo, cellRepo, elementRepo, epochRepo, armRepo, conceptRepo, freezeRepo, log),
		diff:        NewDiffService(freezeRepo, log),
		rollback:    NewRollbackService(db, freezeRepo, visitRepo, activityRepo, cellRepo, elementRepo, conceptRepo, audit, log),
	}
}

func (f *fixture) mustStudy(t *testing.T, name string) *types.Study {
	t.Helper()
	study, err := f.study.Create(context.Background(), name, nil, nil, nil)
	if err != nil {
		t.Fatalf("create study: %v", err)
	}
	return study
}

func (f *fixture) mustVisit(t *testing.T, studyID uint, name string) *types.Visit {
	t.Helper()
	visit, err := f.visit.Create(context.Background(), studyID, name, "", nil)
	if err != nil {
		t.Fatalf("create visit %q: %v", name, err)
	}
	return visit
}

func (f *fixture) mustActivity(t *testing.T, studyID uint, name string) *types.Activity {
	t.Helper()
	activity, err := f.activity.Create(context.Background(), studyID, name)
	if err != nil {
		t.Fatalf("create activity %q: %v", name, err)
	}
	return activity
}

func (f *fixture) mustCell(t *testing.T, studyID, visitID, activityID uint, status string) {
	t.Helper()
	if _, err := f.cell.SetCell(context.Background(), studyID, visitID, activityID, status); err != nil {
		t.Fatalf("set cell: %v", err)
	}
}

func (f *fixture) mustFreeze(t *testing.T, studyID uint, label string) *types.Freeze {
	t.Helper()
	freeze, err := f.freeze.Create(context.Background(), studyID, label)
	if err != nil {
		t.Fatalf("create freeze: %v", err)
	}
	return freeze
}
