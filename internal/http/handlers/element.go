package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type ElementHandler struct {
	log     *logger.Logger
	element services.ElementService
}

func NewElementHandler(log *logger.Logger, element services.ElementService) *ElementHandler {
	return &ElementHandler{
		log:     log.With("handler", "ElementHandler"),
		element: element,
	}
}

// GET /api/studies/:studyID/elements
func (h *ElementHandler) ListElements(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	elements, err := h.element.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"elements": elements})
}

// GET /api/studies/:studyID/elements/:elementID
func (h *ElementHandler) GetElement(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	elementID, err := uintParam(c, "elementID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	element, err := h.element.Get(c.Request.Context(), studyID, elementID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, element)
}

// POST /api/studies/:studyID/elements
func (h *ElementHandler) CreateElement(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.ElementCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	element, err := h.element.Create(c.Request.Context(), studyID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, element)
}

// PATCH /api/studies/:studyID/elements/:elementID
func (h *ElementHandler) UpdateElement(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	elementID, err := uintParam(c, "elementID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req services.ElementUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	element, err := h.element.Update(c.Request.Context(), studyID, elementID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, element)
}

// DELETE /api/studies/:studyID/elements/:elementID
func (h *ElementHandler) DeleteElement(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	elementID, err := uintParam(c, "elementID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if err := h.element.Delete(c.Request.Context(), studyID, elementID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/studies/:studyID/elements/order
func (h *ElementHandler) ReorderElements(c *gin.Context) {
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
	oldOrder, err := h.element.Reorder(c.Request.Context(), studyID, req.Order)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"old_order": oldOrder, "new_order": req.Order})
}
