package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
	"github.com/soabuilder/soa-backend/internal/types"
)

type AuditHandler struct {
	log   *logger.Logger
	audit services.AuditService
}

func NewAuditHandler(log *logger.Logger, audit services.AuditService) *AuditHandler {
	return &AuditHandler{
		log:   log.With("handler", "AuditHandler"),
		audit: audit,
	}
}

var auditEntityKinds = map[string]string{
	"visits":     types.EntityKindVisit,
	"activities": types.EntityKindActivity,
	"epochs":     types.EntityKindEpoch,
	"arms":       types.EntityKindArm,
	"elements":   types.EntityKindElement,
}

// GET /api/studies/:studyID/audit/entities/:kind
func (h *AuditHandler) ListEntityAudit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	kind, ok := auditEntityKinds[c.Param("kind")]
	if !ok {
		response.RespondFromError(c, apierr.Invalid("unknown audit entity kind %q", c.Param("kind")))
		return
	}
	entries, err := h.audit.ListEntityAudit(c.Request.Context(), studyID, kind)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// GET /api/studies/:studyID/audit/rollbacks
func (h *AuditHandler) ListRollbackAudit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	entries, err := h.audit.ListRollbackAudit(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// GET /api/studies/:studyID/audit/reorders
func (h *AuditHandler) ListReorderAudit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	entries, err := h.audit.ListReorderAudit(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}
