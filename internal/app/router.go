package app

import (
	soahttp "github.com/soabuilder/soa-backend/internal/http"
)

func wireRouter(h Handlers) *soahttp.Server {
	return soahttp.NewServer(soahttp.RouterConfig{
		StudyHandler:    h.Study,
		VisitHandler:    h.Visit,
		ActivityHandler: h.Activity,
		CellHandler:     h.Cell,
		ElementHandler:  h.Element,
		EpochHandler:    h.Epoch,
		ArmHandler:      h.Arm,
		FreezeHandler:   h.Freeze,
		RollbackHandler: h.Rollback,
		AuditHandler:    h.Audit,
		HealthHandler:   h.Health,
	})
}
