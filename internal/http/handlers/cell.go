package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type CellHandler struct {
	log  *logger.Logger
	cell services.CellService
}

func NewCellHandler(log *logger.Logger, cell services.CellService) *CellHandler {
	return &CellHandler{
		log:  log.With("handler", "CellHandler"),
		cell: cell,
	}
}

type setCellRequest struct {
	VisitID    uint   `json:"visit_id"`
	ActivityID uint   `json:"activity_id"`
	Status     string `json:"status"`
}

// PUT /api/studies/:studyID/cells
//
// A blank status clears the cell. Only marked cells are stored.
func (h *CellHandler) SetCell(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req setCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	if req.VisitID == 0 || req.ActivityID == 0 {
		response.RespondFromError(c, apierr.Invalid("visit_id and activity_id required"))
		return
	}
	result, err := h.cell.SetCell(c.Request.Context(), studyID, req.VisitID, req.ActivityID, req.Status)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/studies/:studyID/matrix
func (h *CellHandler) GetMatrix(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	matrix, err := h.cell.Matrix(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, matrix)
}
