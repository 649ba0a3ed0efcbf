package snapshot

import (
	"testing"
	"time"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	epochID := uint(3)
	p := &Payload{
		StudyID:      7,
		StudyName:    "Oncology Phase II",
		VersionLabel: "v1",
		FrozenAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Visits: []VisitRecord{
			{ID: 10, Name: "Screening", RawHeader: "Screening", OrderIndex: 1, EpochID: &epochID},
			{ID: 11, Name: "Week 1", RawHeader: "Wk 1", OrderIndex: 2},
		},
		Activities: []ActivityRecord{
			{ID: 20, Name: "ECG", OrderIndex: 1, ActivityUID: "Activity_1"},
		},
		Cells: []CellRecord{
			{VisitID: 10, ActivityID: 20, Status: "X"},
		},
		ActivityConcepts: map[uint][]ConceptRecord{
			20: {{Code: "C71388", Title: "ECG Test"}},
		},
	}

	data, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.SchemaVersion != SchemaVersion {
		t.Errorf("schema version: got=%d want=%d", got.SchemaVersion, SchemaVersion)
	}
	if got.StudyID != 7 || got.StudyName != "Oncology Phase II" || got.VersionLabel != "v1" {
		t.Errorf("header fields mismatch: %+v", got)
	}
	if len(got.Visits) != 2 || got.Visits[0].EpochID == nil || *got.Visits[0].EpochID != 3 {
		t.Errorf("visits mismatch: %+v", got.Visits)
	}
	if len(got.ActivityConcepts[20]) != 1 || got.ActivityConcepts[20][0].Code != "C71388" {
		t.Errorf("concepts mismatch: %+v", got.ActivityConcepts)
	}
}

func TestDecodeLegacyStringKeys(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"soa_id": 4,
		"soa_name": "Legacy",
		"version_label": "v2",
		"activity_concepts": {
			"15": [{"code": "C100", "title": "Vitals"}],
			"junk": [{"code": "C999", "title": "Dropped"}]
		}
	}`)

	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.ActivityConcepts) != 1 {
		t.Fatalf("expected junk key skipped, got %d entries", len(p.ActivityConcepts))
	}
	if p.ActivityConcepts[15][0].Code != "C100" {
		t.Errorf("numeric key not normalized: %+v", p.ActivityConcepts)
	}
}

func TestDecodeEmptyObjectNormalizesSlices(t *testing.T) {
	t.Parallel()

	p, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Visits == nil || p.Activities == nil || p.Cells == nil || p.Elements == nil || p.Epochs == nil || p.Arms == nil {
		t.Errorf("expected empty slices, got nils: %+v", p)
	}
	if p.ActivityConcepts == nil {
		t.Error("expected empty concept map, got nil")
	}
}

func TestDecodeCorruptPayload(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"soa_id": not json`))
	if err == nil {
		t.Fatal("expected error for corrupt payload")
	}
	if !apierr.IsCode(err, apierr.CodeCorrupt) {
		t.Errorf("expected corrupt code, got %v", err)
	}
}
