package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type VisitHandler struct {
	log   *logger.Logger
	visit services.VisitService
}

func NewVisitHandler(log *logger.Logger, visit services.VisitService) *VisitHandler {
	return &VisitHandler{
		log:   log.With("handler", "VisitHandler"),
		visit: visit,
	}
}

type createVisitRequest struct {
	Name      string `json:"name"`
	RawHeader string `json:"raw_header,omitempty"`
	EpochID   *uint  `json:"epoch_id,omitempty"`
}

type reorderRequest struct {
	Order []uint `json:"order"`
}

// GET /api/studies/:studyID/visits
func (h *VisitHandler) ListVisits(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	visits, err := h.visit.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"visits": visits})
}

// GET /api/studies/:studyID/visits/:visitID
func (h *VisitHandler) GetVisit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	visitID, err := uintParam(c, "visitID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	visit, err := h.visit.Get(c.Request.Context(), studyID, visitID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, visit)
}

// POST /api/studies/:studyID/visits
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	visit, err := h.visit.Create(c.Request.Context(), studyID, req.Name, req.RawHeader, req.EpochID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, visit)
}

// PATCH /api/studies/:studyID/visits/:visitID
func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	visitID, err := uintParam(c, "visitID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.VisitUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	visit, err := h.visit.Update(c.Request.Context(), studyID, visitID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, visit)
}

// DELETE /api/studies/:studyID/visits/:visitID
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	visitID, err := uintParam(c, "visitID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if err := h.visit.Delete(c.Request.Context(), studyID, visitID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/studies/:studyID/visits/order
func (h *VisitHandler) ReorderVisits(c *gin.Context) {
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
	oldOrder, err := h.visit.Reorder(c.Request.Context(), studyID, req.Order)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"old_order": oldOrder, "new_order": req.Order})
}
