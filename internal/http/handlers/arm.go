package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type ArmHandler struct {
	log *logger.Logger
	arm services.ArmService
}

func NewArmHandler(log *logger.Logger, arm services.ArmService) *ArmHandler {
	return &ArmHandler{
		log: log.With("handler", "ArmHandler"),
		arm: arm,
	}
}

// GET /api/studies/:studyID/arms
func (h *ArmHandler) ListArms(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	arms, err := h.arm.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"arms": arms})
}

// GET /api/studies/:studyID/arms/:armID
func (h *ArmHandler) GetArm(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	armID, err := uintParam(c, "armID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	arm, err := h.arm.Get(c.Request.Context(), studyID, armID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, arm)
}

// POST /api/studies/:studyID/arms
func (h *ArmHandler) CreateArm(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.ArmCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	arm, err := h.arm.Create(c.Request.Context(), studyID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, arm)
}

// PATCH /api/studies/:studyID/arms/:armID
func (h *ArmHandler) UpdateArm(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	armID, err := uintParam(c, "armID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.ArmUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	arm, err := h.arm.Update(c.Request.Context(), studyID, armID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, arm)
}

// DELETE /api/studies/:studyID/arms/:armID
func (h *ArmHandler) DeleteArm(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	armID, err := uintParam(c, "armID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if err := h.arm.Delete(c.Request.Context(), studyID, armID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/studies/:studyID/arms/order
func (h *ArmHandler) ReorderArms(c *gin.Context) {
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
	oldOrder, err := h.arm.Reorder(c.Request.Context(), studyID, req.Order)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"old_order": oldOrder, "new_order": req.Order})
}
