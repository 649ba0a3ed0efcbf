package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

func TestRespondFromErrorMapping(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not_found", apierr.NotFound("study 9 not found"), http.StatusNotFound, "not_found"},
		{"conflict", apierr.Conflict("label taken"), http.StatusConflict, "conflict"},
		{"invalid", apierr.Invalid("bad id"), http.StatusBadRequest, "invalid"},
		{"corrupt", apierr.Corrupt("bad payload"), http.StatusUnprocessableEntity, "corrupt"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondFromError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("parse envelope: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Errorf("code: got=%q want=%q", envelope.Error.Code, tc.wantCode)
			}
			if envelope.Error.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestRespondFromErrorUnknownError(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondFromError(c, http.ErrBodyNotAllowed)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d want=500", rec.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("parse envelope: %v", err)
	}
	if envelope.Error.Code != "internal" {
		t.Errorf("code: got=%q want=internal", envelope.Error.Code)
	}
}
