package app

import (
	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type Services struct {
	Audit    services.AuditService
	Study    services.StudyService
	Visit    services.VisitService
	Activity services.ActivityService
	Cell     services.CellService
	Element  services.ElementService
	Epoch    services.EpochService
	Arm      services.ArmService
	Concept  services.ConceptService
	Freeze   services.FreezeService
	Diff     services.DiffService
	Rollback services.RollbackService
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos) Services {
	log.Info("Wiring services...")
	audit := services.NewAuditService(r.EntityAudit, r.RollbackAudit, r.ReorderAudit, log)
	return Services{
		Audit:    audit,
		Study:    services.NewStudyService(r.Study, log),
		Visit:    services.NewVisitService(db, r.Study, r.Visit, r.Epoch, r.Cell, audit, log),
		Activity: services.NewActivityService(db, r.Study, r.Activity, r.Cell, r.ActivityConcept, audit, log),
		Cell:     services.NewCellService(r.Study, r.Visit, r.Activity, r.Cell, log),
		Element:  services.NewElementService(r.Study, r.Element, audit, log),
		Epoch:    services.NewEpochService(r.Study, r.Epoch, audit, log),
		Arm:      services.NewArmService(r.Study, r.Arm, audit, log),
		Concept:  services.NewConceptService(r.Study, r.Activity, r.ActivityConcept, log),
		Freeze:   services.NewFreezeService(db, r.Study, r.Visit, r.Activity, r.Cell, r.Element, r.Epoch, r.Arm, r.ActivityConcept, r.Freeze, log),
		Diff:     services.NewDiffService(r.Freeze, log),
		Rollback: services.NewRollbackService(db, r.Freeze, r.Visit, r.Activity, r.Cell, r.Element, r.ActivityConcept, audit, log),
	}
}
