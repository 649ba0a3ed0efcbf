package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type ActivityHandler struct {
	log      *logger.Logger
	activity services.ActivityService
	concept  services.ConceptService
}

func NewActivityHandler(log *logger.Logger, activity services.ActivityService, concept services.ConceptService) *ActivityHandler {
	return &ActivityHandler{
		log:      log.With("handler", "ActivityHandler"),
		activity: activity,
		concept:  concept,
	}
}

type createActivityRequest struct {
	Name string `json:"name"`
}

type createActivitiesBulkRequest struct {
	Names []string `json:"names"`
}

type setConceptsRequest struct {
	Concepts []services.ConceptAssignment `json:"concepts"`
}

// GET /api/studies/:studyID/activities
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activities, err := h.activity.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": activities})
}

// GET /api/studies/:studyID/activities/:activityID
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activityID, err := uintParam(c, "activityID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activity, err := h.activity.Get(c.Request.Context(), studyID, activityID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, activity)
}

// POST /api/studies/:studyID/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	activity, err := h.activity.Create(c.Request.Context(), studyID, req.Name)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, activity)
}

// POST /api/studies/:studyID/activities/bulk
func (h *ActivityHandler) CreateActivitiesBulk(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req createActivitiesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	activities, err := h.activity.CreateBulk(c.Request.Context(), studyID, req.Names)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"activities": activities})
}

// PATCH /api/studies/:studyID/activities/:activityID
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activityID, err := uintParam(c, "activityID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	activity, err := h.activity.Update(c.Request.Context(), studyID, activityID, req.Name)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, activity)
}

// DELETE /api/studies/:studyID/activities/:activityID
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activityID, err := uintParam(c, "activityID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if err := h.activity.Delete(c.Request.Context(), studyID, activityID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/studies/:studyID/activities/order
func (h *ActivityHandler) ReorderActivities(c *gin.Context) {
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
	oldOrder, err := h.activity.Reorder(c.Request.Context(), studyID, req.Order)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"old_order": oldOrder, "new_order": req.Order})
}

// GET /api/studies/:studyID/activities/:activityID/concepts
func (h *ActivityHandler) ListActivityConcepts(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activityID, err := uintParam(c, "activityID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	concepts, err := h.concept.ListByActivity(c.Request.Context(), studyID, activityID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"concepts": concepts})
}

// PUT /api/studies/:studyID/activities/:activityID/concepts
func (h *ActivityHandler) SetActivityConcepts(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	activityID, err := uintParam(c, "activityID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	var req setConceptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	concepts, err := h.concept.SetActivityConcepts(c.Request.Context(), studyID, activityID, req.Concepts)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"concepts": concepts})
}
