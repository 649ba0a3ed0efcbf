// Package snapshot defines the serialized freeze payload: a fully
// self-contained copy of a study's versionable collections, carrying the
// primary keys that existed at capture time. Payloads never reference live
// rows; diff and rollback operate on the captured values alone.
package snapshot

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

// SchemaVersion of payloads written by this code. Version 0 payloads (no
// schema_version field) predate elements/epochs/arms capture and string-vs-int
// concept map keys; Decode canonicalizes them.
const SchemaVersion = 1

type VisitRecord struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	RawHeader  string `json:"raw_header"`
	OrderIndex int    `json:"order_index"`
	EpochID    *uint  `json:"epoch_id,omitempty"`
}

type ActivityRecord struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	OrderIndex  int    `json:"order_index"`
	ActivityUID string `json:"activity_uid,omitempty"`
}

type CellRecord struct {
	VisitID    uint   `json:"visit_id"`
	ActivityID uint   `json:"activity_id"`
	Status     string `json:"status"`
}

type ElementRecord struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
	StartRule   *string `json:"testrl,omitempty"`
	EndRule     *string `json:"teenrl,omitempty"`
	OrderIndex  int     `json:"order_index"`
}

type EpochRecord struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	OrderIndex  int     `json:"order_index"`
	EpochSeq    int     `json:"epoch_seq"`
	Label       *string `json:"epoch_label,omitempty"`
	Description *string `json:"epoch_description,omitempty"`
}

type ArmRecord struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Label          *string `json:"label,omitempty"`
	Description    *string `json:"description,omitempty"`
	Type           *string `json:"type,omitempty"`
	DataOriginType *string `json:"data_origin_type,omitempty"`
	OrderIndex     int     `json:"order_index"`
	ArmUID         string  `json:"arm_uid,omitempty"`
}

type ConceptRecord struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type Payload struct {
	SchemaVersion int    `json:"schema_version"`
	StudyID       uint   `json:"soa_id"`
	StudyName     string `json:"soa_name"`
	VersionLabel  string `json:"version_label"`

	FrozenAt time.Time `json:"frozen_at"`

	Visits     []VisitRecord    `json:"visits"`
	Activities []ActivityRecord `json:"activities"`
	Cells      []CellRecord     `json:"cells"`
	Elements   []ElementRecord  `json:"elements"`
	Epochs     []EpochRecord    `json:"epochs"`
	Arms       []ArmRecord      `json:"arms"`

	// ActivityConcepts is keyed by captured activity id.
	ActivityConcepts map[uint][]ConceptRecord `json:"-"`
}

// rawPayload is the wire form. JSON object keys are always strings, and
// legacy writers emitted concept maps keyed by stringified ints.
type rawPayload struct {
	Payload
	ActivityConcepts map[string][]ConceptRecord `json:"activity_concepts"`
}

// Encode serializes a payload at the current schema version.
func Encode(p *Payload) ([]byte, error) {
	raw := rawPayload{Payload: *p}
	raw.SchemaVersion = SchemaVersion
	if p.ActivityConcepts != nil {
		raw.ActivityConcepts = make(map[string][]ConceptRecord, len(p.ActivityConcepts))
		for aid, list := range p.ActivityConcepts {
			raw.ActivityConcepts[strconv.FormatUint(uint64(aid), 10)] = list
		}
	}
	return json.Marshal(raw)
}

// Decode parses and normalizes a stored payload. Unparseable data returns a
// Corrupt error; callers that only display the snapshot degrade instead of
// failing.
func Decode(data []byte) (*Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apierr.Corrupt("corrupt snapshot: %v", err)
	}
	p := raw.Payload
	p.ActivityConcepts = make(map[uint][]ConceptRecord, len(raw.ActivityConcepts))
	for key, list := range raw.ActivityConcepts {
		aid, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			// Legacy payloads have been seen with junk keys; skip them.
			continue
		}
		p.ActivityConcepts[uint(aid)] = list
	}
	if p.Visits == nil {
		p.Visits = []VisitRecord{}
	}
	if p.Activities == nil {
		p.Activities = []ActivityRecord{}
	}
	if p.Cells == nil {
		p.Cells = []CellRecord{}
	}
	if p.Elements == nil {
		p.Elements = []ElementRecord{}
	}
	if p.Epochs == nil {
		p.Epochs = []EpochRecord{}
	}
	if p.Arms == nil {
		p.Arms = []ArmRecord{}
	}
	return &p, nil
}
