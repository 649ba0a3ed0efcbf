package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

func TestRollbackRestoresSnapshotState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Rollback Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	v2 := f.mustVisit(t, study.ID, "Week 1")
	a1 := f.mustActivity(t, study.ID, "ECG")
	a2 := f.mustActivity(t, study.ID, "Labs")
	f.mustCell(t, study.ID, v1.ID, a1.ID, "X")
	f.mustCell(t, study.ID, v2.ID, a2.ID, "O")
	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, a1.ID, []ConceptAssignment{
		{Code: "C71388", Title: "ECG Test"},
	}); err != nil {
		t.Fatalf("set concepts: %v", err)
	}
	if _, err := f.element.Create(ctx, study.ID, ElementCreate{Name: "Treatment"}); err != nil {
		t.Fatalf("create element: %v", err)
	}

	frozen := f.mustFreeze(t, study.ID, "baseline")

	// Mutate heavily after the freeze.
	if err := f.visit.Delete(ctx, study.ID, v2.ID); err != nil {
		t.Fatalf("delete visit: %v", err)
	}
	if err := f.activity.Delete(ctx, study.ID, a2.ID); err != nil {
		t.Fatalf("delete activity: %v", err)
	}
	f.mustVisit(t, study.ID, "Unscheduled")

	counts, err := f.rollback.Rollback(ctx, study.ID, frozen.ID)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if counts.FreezeID != frozen.ID {
		t.Errorf("counts freeze id: got=%d want=%d", counts.FreezeID, frozen.ID)
	}
	if counts.Visits != 2 || counts.Activities != 2 || counts.Cells != 2 || counts.Concepts != 1 || counts.Elements != 1 {
		t.Errorf("restore counts mismatch: %+v", counts)
	}

	visits, err := f.visit.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 2 || visits[0].Name != "Screening" || visits[1].Name != "Week 1" {
		t.Fatalf("restored visits mismatch: %+v", visits)
	}

	activities, err := f.activity.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 2 || activities[0].Name != "ECG" || activities[1].Name != "Labs" {
		t.Fatalf("restored activities mismatch: %+v", activities)
	}

	// Cells must point at the remapped ids, not the captured ones.
	matrix, err := f.cell.Matrix(ctx, study.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Cells) != 2 {
		t.Fatalf("restored cells mismatch: %+v", matrix.Cells)
	}
	validVisit := map[uint]bool{visits[0].ID: true, visits[1].ID: true}
	validActivity := map[uint]bool{activities[0].ID: true, activities[1].ID: true}
	for _, c := range matrix.Cells {
		if !validVisit[c.VisitID] || !validActivity[c.ActivityID] {
			t.Errorf("cell references stale ids: %+v", c)
		}
	}

	concepts, err := f.concept.ListByActivity(ctx, study.ID, activities[0].ID)
	if err != nil {
		t.Fatalf("list concepts: %v", err)
	}
	if len(concepts) != 1 || concepts[0].ConceptCode != "C71388" || concepts[0].ConceptTitle != "ECG Test" {
		t.Errorf("restored concepts mismatch: %+v", concepts)
	}
}

func TestRollbackRestoresCapturedConceptTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Title Study")
	activity := f.mustActivity(t, study.ID, "Vitals")

	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, activity.ID, []ConceptAssignment{
		{Code: "BC001", Title: "Body Weight"},
	}); err != nil {
		t.Fatalf("set concepts: %v", err)
	}
	frozen := f.mustFreeze(t, study.ID, "baseline")

	// The mapping keeps the same code but a different title after the freeze.
	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, activity.ID, []ConceptAssignment{
		{Code: "BC001", Title: "Body Weight (kg)"},
	}); err != nil {
		t.Fatalf("rewrite concepts: %v", err)
	}

	if _, err := f.rollback.Rollback(ctx, study.ID, frozen.ID); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	activities, err := f.activity.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("restored activities mismatch: %+v", activities)
	}
	concepts, err := f.concept.ListByActivity(ctx, study.ID, activities[0].ID)
	if err != nil {
		t.Fatalf("list concepts: %v", err)
	}
	if len(concepts) != 1 || concepts[0].ConceptCode != "BC001" {
		t.Fatalf("restored concepts mismatch: %+v", concepts)
	}
	// The captured title wins over whatever the live mapping said.
	if concepts[0].ConceptTitle != "Body Weight" {
		t.Errorf("concept title: got=%q want=%q", concepts[0].ConceptTitle, "Body Weight")
	}
}

func TestRollbackThenFreezeDiffsClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Round Trip Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	a1 := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, v1.ID, a1.ID, "X")

	baseline := f.mustFreeze(t, study.ID, "baseline")

	f.mustVisit(t, study.ID, "Week 1")
	if _, err := f.rollback.Rollback(ctx, study.ID, baseline.ID); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	after := f.mustFreeze(t, study.ID, "after-rollback")
	result, err := f.diff.Diff(ctx, study.ID, baseline.ID, after.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}

	// Ids changed across the rollback, so the by-id comparison reports the
	// same logical visit on both sides. Cells diff by captured ids too.
	if result.Meta.Visits.AddedTotal != result.Meta.Visits.RemovedTotal {
		t.Errorf("asymmetric visit diff after clean rollback: %+v", result.Meta.Visits)
	}
	if result.Meta.Cells.ChangedTotal != 0 {
		t.Errorf("cell content changes after clean rollback: %+v", result.Cells.Changed)
	}
}

func TestRollbackCrossStudyGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustStudy(t, "Study A")
	b := f.mustStudy(t, "Study B")

	f.mustVisit(t, b.ID, "B Visit")
	frozenA := f.mustFreeze(t, a.ID, "")

	// Rewrite the stored payload so it claims another study.
	if err := f.db.Exec(
		"UPDATE soa_freeze SET snapshot_json = ? WHERE id = ?",
		`{"soa_id": 2, "soa_name": "Study B", "version_label": "v1"}`, frozenA.ID,
	).Error; err != nil {
		t.Fatalf("rewrite snapshot: %v", err)
	}

	_, err := f.rollback.Rollback(ctx, a.ID, frozenA.ID)
	if !apierr.IsCode(err, apierr.CodeInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}

	// The guarded rollback must not have touched study B's live data.
	visits, err := f.visit.List(ctx, b.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 1 || visits[0].Name != "B Visit" {
		t.Errorf("study B mutated by guarded rollback: %+v", visits)
	}
}

func TestRollbackSkipsUnresolvableCells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Unresolvable Study")
	f.mustVisit(t, study.ID, "Screening")

	frozen := f.mustFreeze(t, study.ID, "")

	// Hand-craft a payload with a cell pointing at ids the snapshot does not
	// contain.
	if err := f.db.Exec(
		"UPDATE soa_freeze SET snapshot_json = ? WHERE id = ?",
		`{"schema_version": 1, "soa_id": `+itoa(study.ID)+`, "soa_name": "Unresolvable Study", "version_label": "v1",
		  "visits": [{"id": 501, "name": "Screening", "raw_header": "Screening", "order_index": 1}],
		  "activities": [],
		  "cells": [{"visit_id": 501, "activity_id": 999, "status": "X"}]}`, frozen.ID,
	).Error; err != nil {
		t.Fatalf("rewrite snapshot: %v", err)
	}

	counts, err := f.rollback.Rollback(ctx, study.ID, frozen.ID)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if counts.Visits != 1 || counts.Cells != 0 {
		t.Errorf("expected unresolvable cell skipped: %+v", counts)
	}
}

func TestRollbackWritesAuditRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Audit Study")
	v := f.mustVisit(t, study.ID, "Screening")
	a := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, v.ID, a.ID, "X")

	frozen := f.mustFreeze(t, study.ID, "")
	if _, err := f.rollback.Rollback(ctx, study.ID, frozen.ID); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	entries, err := f.audit.ListRollbackAudit(ctx, study.ID)
	if err != nil {
		t.Fatalf("list rollback audit: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one rollback audit row, got %d", len(entries))
	}
	entry := entries[0]
	if entry.FreezeID != frozen.ID || entry.VisitsRestored != 1 || entry.ActivitiesRestored != 1 || entry.CellsRestored != 1 {
		t.Errorf("rollback audit mismatch: %+v", entry)
	}
}

func TestRollbackPreviewDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Preview Study")
	v := f.mustVisit(t, study.ID, "Screening")
	a := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, v.ID, a.ID, "X")

	frozen := f.mustFreeze(t, study.ID, "")
	extra := f.mustVisit(t, study.ID, "Week 1")

	preview, err := f.rollback.Preview(ctx, study.ID, frozen.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Visits != 1 || preview.Activities != 1 || preview.Cells != 1 {
		t.Errorf("preview counts mismatch: %+v", preview)
	}
	if preview.VersionLabel != frozen.VersionLabel {
		t.Errorf("preview label mismatch: %+v", preview)
	}

	// Live data untouched.
	visits, err := f.visit.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 2 || visits[1].ID != extra.ID {
		t.Errorf("preview mutated live data: %+v", visits)
	}
}

func TestRollbackMissingFreeze(t *testing.T) {
	f := newFixture(t)
	study := f.mustStudy(t, "Missing Study")
	_, err := f.rollback.Rollback(context.Background(), study.ID, 404)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
