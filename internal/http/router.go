package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/soabuilder/soa-backend/internal/http/handlers"
	httpMW "github.com/soabuilder/soa-backend/internal/http/middleware"
)

type RouterConfig struct {
	StudyHandler    *httpH.StudyHandler
	VisitHandler    *httpH.VisitHandler
	ActivityHandler *httpH.ActivityHandler
	CellHandler     *httpH.CellHandler
	ElementHandler  *httpH.ElementHandler
	EpochHandler    *httpH.EpochHandler
	ArmHandler      *httpH.ArmHandler
	FreezeHandler   *httpH.FreezeHandler
	RollbackHandler *httpH.RollbackHandler
	AuditHandler    *httpH.AuditHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.RequestID())
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Studies
	if cfg.StudyHandler != nil {
		api.POST("/studies", cfg.StudyHandler.CreateStudy)
		api.GET("/studies", cfg.StudyHandler.ListStudies)
		api.GET("/studies/:studyID", cfg.StudyHandler.GetStudy)
	}

	study := api.Group("/studies/:studyID")
	{
		// Visits
		if cfg.VisitHandler != nil {
			study.GET("/visits", cfg.VisitHandler.ListVisits)
			study.POST("/visits", cfg.VisitHandler.CreateVisit)
			study.PUT("/visits/order", cfg.VisitHandler.ReorderVisits)
			study.GET("/visits/:visitID", cfg.VisitHandler.GetVisit)
			study.PATCH("/visits/:visitID", cfg.VisitHandler.UpdateVisit)
			study.DELETE("/visits/:visitID", cfg.VisitHandler.DeleteVisit)
		}

		// Activities and their concept assignments
		if cfg.ActivityHandler != nil {
			study.GET("/activities", cfg.ActivityHandler.ListActivities)
			study.POST("/activities", cfg.ActivityHandler.CreateActivity)
			study.POST("/activities/bulk", cfg.ActivityHandler.CreateActivitiesBulk)
			study.PUT("/activities/order", cfg.ActivityHandler.ReorderActivities)
			study.GET("/activities/:activityID", cfg.ActivityHandler.GetActivity)
			study.PATCH("/activities/:activityID", cfg.ActivityHandler.UpdateActivity)
			study.DELETE("/activities/:activityID", cfg.ActivityHandler.DeleteActivity)
			study.GET("/activities/:activityID/concepts", cfg.ActivityHandler.ListActivityConcepts)
			study.PUT("/activities/:activityID/concepts", cfg.ActivityHandler.SetActivityConcepts)
		}

		// Matrix cells
		if cfg.CellHandler != nil {
			study.PUT("/cells", cfg.CellHandler.SetCell)
			study.GET("/matrix", cfg.CellHandler.GetMatrix)
		}

		// Elements
		if cfg.ElementHandler != nil {
			study.GET("/elements", cfg.ElementHandler.ListElements)
			study.POST("/elements", cfg.ElementHandler.CreateElement)
			study.PUT("/elements/order", cfg.ElementHandler.ReorderElements)
			study.GET("/elements/:elementID", cfg.ElementHandler.GetElement)
			study.PATCH("/elements/:elementID", cfg.ElementHandler.UpdateElement)
			study.DELETE("/elements/:elementID", cfg.ElementHandler.DeleteElement)
		}

		// Epochs
		if cfg.EpochHandler != nil {
			study.GET("/epochs", cfg.EpochHandler.ListEpochs)
			study.POST("/epochs", cfg.EpochHandler.CreateEpoch)
			study.PUT("/epochs/order", cfg.EpochHandler.ReorderEpochs)
			study.GET("/epochs/:epochID", cfg.EpochHandler.GetEpoch)
			study.PATCH("/epochs/:epochID", cfg.EpochHandler.UpdateEpoch)
			study.DELETE("/epochs/:epochID", cfg.EpochHandler.DeleteEpoch)
		}

		// Arms
		if cfg.ArmHandler != nil {
			study.GET("/arms", cfg.ArmHandler.ListArms)
			study.POST("/arms", cfg.ArmHandler.CreateArm)
			study.PUT("/arms/order", cfg.ArmHandler.ReorderArms)
			study.GET("/arms/:armID", cfg.ArmHandler.GetArm)
			study.PATCH("/arms/:armID", cfg.ArmHandler.UpdateArm)
			study.DELETE("/arms/:armID", cfg.ArmHandler.DeleteArm)
		}

		// Freezes and diffs
		if cfg.FreezeHandler != nil {
			study.POST("/freezes", cfg.FreezeHandler.CreateFreeze)
			study.GET("/freezes", cfg.FreezeHandler.ListFreezes)
			study.GET("/freezes/:freezeID", cfg.FreezeHandler.GetFreeze)
			study.GET("/diff", cfg.FreezeHandler.DiffFreezes)
		}

		// Rollback
		if cfg.RollbackHandler != nil {
			study.POST("/rollback/:freezeID", cfg.RollbackHandler.Rollback)
			study.GET("/rollback/:freezeID/preview", cfg.RollbackHandler.PreviewRollback)
		}

		// Audit trails
		if cfg.AuditHandler != nil {
			study.GET("/audit/entities/:kind", cfg.AuditHandler.ListEntityAudit)
			study.GET("/audit/rollbacks", cfg.AuditHandler.ListRollbackAudit)
			study.GET("/audit/reorders", cfg.AuditHandler.ListReorderAudit)
		}
	}

	return r
}
