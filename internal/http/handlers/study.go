package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type StudyHandler struct {
	log   *logger.Logger
	study services.StudyService
}

func NewStudyHandler(log *logger.Logger, study services.StudyService) *StudyHandler {
	return &StudyHandler{
		log:   log.With("handler", "StudyHandler"),
		study: study,
	}
}

type createStudyRequest struct {
	Name             string  `json:"name"`
	StudyUID         *string `json:"study_uid,omitempty"`
	StudyLabel       *string `json:"study_label,omitempty"`
	StudyDescription *string `json:"study_description,omitempty"`
}

// POST /api/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req createStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	study, err := h.study.Create(c.Request.Context(), req.Name, req.StudyUID, req.StudyLabel, req.StudyDescription)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, study)
}

// GET /api/studies
func (h *StudyHandler) ListStudies(c *gin.Context) {
	studies, err := h.study.List(c.Request.Context())
	if err != nil {
		h.log.Error("ListStudies failed", "error", err)
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"studies": studies})
}

// GET /api/studies/:studyID
func (h *StudyHandler) GetStudy(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	study, err := h.study.Get(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, study)
}
