package app

import (
	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
)

type Repos struct {
	Study           repos.StudyRepo
	Visit           repos.VisitRepo
	Activity        repos.ActivityRepo
	Cell            repos.CellRepo
	Element         repos.ElementRepo
	Epoch           repos.EpochRepo
	Arm             repos.ArmRepo
	ActivityConcept repos.ActivityConceptRepo
	Freeze          repos.FreezeRepo
	EntityAudit     repos.EntityAuditRepo
	RollbackAudit   repos.RollbackAuditRepo
	ReorderAudit    repos.ReorderAuditRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Study:           repos.NewStudyRepo(db, log),
		Visit:           repos.NewVisitRepo(db, log),
		Activity:        repos.NewActivityRepo(db, log),
		Cell:            repos.NewCellRepo(db, log),
		Element:         repos.NewElementRepo(db, log),
		Epoch:           repos.NewEpochRepo(db, log),
		Arm:             repos.NewArmRepo(db, log),
		ActivityConcept: repos.NewActivityConceptRepo(db, log),
		Freeze:          repos.NewFreezeRepo(db, log),
		EntityAudit:     repos.NewEntityAuditRepo(db, log),
		RollbackAudit:   repos.NewRollbackAuditRepo(db, log),
		ReorderAudit:    repos.NewReorderAuditRepo(db, log),
	}
}
