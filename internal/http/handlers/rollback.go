package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type RollbackHandler struct {
	log      *logger.Logger
	rollback services.RollbackService
}

func NewRollbackHandler(log *logger.Logger, rollback services.RollbackService) *RollbackHandler {
	return &RollbackHandler{
		log:      log.With("handler", "RollbackHandler"),
		rollback: rollback,
	}
}

// POST /api/studies/:studyID/rollback/:freezeID
func (h *RollbackHandler) Rollback(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	freezeID, err := uintParam(c, "freezeID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	counts, err := h.rollback.Rollback(c.Request.Context(), studyID, freezeID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, counts)
}

// GET /api/studies/:studyID/rollback/:freezeID/preview
func (h *RollbackHandler) PreviewRollback(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	freezeID, err := uintParam(c, "freezeID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	preview, err := h.rollback.Preview(c.Request.Context(), studyID, freezeID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, preview)
}
