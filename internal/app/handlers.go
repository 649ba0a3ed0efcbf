package app

import (
	httpH "github.com/soabuilder/soa-backend/internal/http/handlers"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
)

type Handlers struct {
	Study    *httpH.StudyHandler
	Visit    *httpH.VisitHandler
	Activity *httpH.ActivityHandler
	Cell     *httpH.CellHandler
	Element  *httpH.ElementHandler
	Epoch    *httpH.EpochHandler
	Arm      *httpH.ArmHandler
	Freeze   *httpH.FreezeHandler
	Rollback *httpH.RollbackHandler
	Audit    *httpH.AuditHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Study:    httpH.NewStudyHandler(log, s.Study),
		Visit:    httpH.NewVisitHandler(log, s.Visit),
		Activity: httpH.NewActivityHandler(log, s.Activity, s.Concept),
		Cell:     httpH.NewCellHandler(log, s.Cell),
		Element:  httpH.NewElementHandler(log, s.Element),
		Epoch:    httpH.NewEpochHandler(log, s.Epoch),
		Arm:      httpH.NewArmHandler(log, s.Arm),
		Freeze:   httpH.NewFreezeHandler(log, s.Freeze, s.Diff, cfg.DiffLimit),
		Rollback: httpH.NewRollbackHandler(log, s.Rollback),
		Audit:    httpH.NewAuditHandler(log, s.Audit),
		Health:   httpH.NewHealthHandler(),
	}
}
