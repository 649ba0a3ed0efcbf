package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/http/response"
	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type FreezeHandler struct {
	log       *logger.Logger
	freeze    services.FreezeService
	diff      services.DiffService
	diffLimit int
}

func NewFreezeHandler(log *logger.Logger, freeze services.FreezeService, diff services.DiffService, diffLimit int) *FreezeHandler {
	if diffLimit <= 0 {
		diffLimit = services.DefaultDiffLimit
	}
	return &FreezeHandler{
		log:       log.With("handler", "FreezeHandler"),
		freeze:    freeze,
		diff:      diff,
		diffLimit: diffLimit,
	}
}

type createFreezeRequest struct {
	VersionLabel string `json:"version_label,omitempty"`
}

// POST /api/studies/:studyID/freezes
func (h *FreezeHandler) CreateFreeze(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	// An empty body is fine; the version label is auto-allocated then.
	var req createFreezeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondFromError(c, apierr.Invalid("invalid request body: %v", err))
			return
		}
	}
	freeze, err := h.freeze.Create(c.Request.Context(), studyID, req.VersionLabel)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"id":            freeze.ID,
		"version_label": freeze.VersionLabel,
		"created_at":    freeze.CreatedAt,
	})
}

// GET /api/studies/:studyID/freezes
func (h *FreezeHandler) ListFreezes(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	freezes, err := h.freeze.List(c.Request.Context(), studyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	items := make([]gin.H, 0, len(freezes))
	for _, f := range freezes {
		items = append(items, gin.H{
			"id":            f.ID,
			"version_label": f.VersionLabel,
			"created_at":    f.CreatedAt,
		})
	}
	response.RespondOK(c, gin.H{"freezes": items})
}

// GET /api/studies/:studyID/freezes/:freezeID
//
// A freeze whose stored snapshot no longer parses is still listable and
// fetchable; its payload is replaced with an error marker instead of
// failing the whole request.
func (h *FreezeHandler) GetFreeze(c *gin.Context) {
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
	view, err := h.freeze.Get(c.Request.Context(), studyID, freezeID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if view.Corrupt {
		response.RespondOK(c, gin.H{
			"id":            view.ID,
			"version_label": view.VersionLabel,
			"created_at":    view.CreatedAt,
			"error":         "corrupt snapshot",
		})
		return
	}
	response.RespondOK(c, gin.H{
		"id":            view.ID,
		"version_label": view.VersionLabel,
		"created_at":    view.CreatedAt,
		"snapshot":      view.Snapshot,
	})
}

// GET /api/studies/:studyID/diff?left=<freezeID>&right=<freezeID>&full=1
//
// Change lists are truncated for interactive use unless full=1 is passed,
// which raises the cap to the bulk limit. Totals in the meta block always
// reflect the untruncated counts.
func (h *FreezeHandler) DiffFreezes(c *gin.Context) {
	studyID, err := uintParam(c, "studyID")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	leftID, err := uintQuery(c, "left")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	rightID, err := uintQuery(c, "right")
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	limit := h.diffLimit
	if c.Query("full") == "1" || c.Query("full") == "true" {
		limit = services.BulkDiffLimit
	}
	result, err := h.diff.Diff(c.Request.Context(), studyID, leftID, rightID, limit)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func uintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apierr.Invalid("invalid %s: %q", name, raw)
	}
	return uint(v), nil
}
