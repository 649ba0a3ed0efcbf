package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type EpochHandler struct {
	log   *logger.Logger
	epoch services.EpochService
}

func NewEpochHandler(log *logger.Logger, epoch services.EpochService) *EpochHandler {
	return &EpochHandler{
		log:   log.With("handler", "EpochHandler"),
		epoch: epoch,
	}
}

// GET /api/studies/:studyID/epochs
func (h *EpochHandler) ListEpochs(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	epochs, err := h.epoch.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"epochs": epochs})
}

// GET /api/studies/:studyID/epochs/:epochID
func (h *EpochHandler) GetEpoch(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	epochID, err := uintParam(c, "epochID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	epoch, err := h.epoch.Get(c.Request.Context(), studyID, epochID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, epoch)
}

// POST /api/studies/:studyID/epochs
func (h *EpochHandler) CreateEpoch(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.EpochCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	epoch, err := h.epoch.Create(c.Request.Context(), studyID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, epoch)
}

// PATCH /api/studies/:studyID/epochs/:epochID
func (h *EpochHandler) UpdateEpoch(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	epochID, err := uintParam(c, "epochID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.EpochUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	epoch, err := h.epoch.Update(c.Request.Context(), studyID, epochID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, epoch)
}

// DELETE /api/studies/:studyID/epochs/:epochID
func (h *EpochHandler) DeleteEpoch(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	epochID, err := uintParam(c, "epochID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if err := h.epoch.Delete(c.Request.Context(), studyID, epochID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/studies/:studyID/epochs/order
func (h *EpochHandler) ReorderEpochs(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	oldOrder, err := h.epoch.Reorder(c.Request.Context(), studyID, req.Order)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"old_order": oldOrder, "new_order": req.Order})
}
