package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

func TestDiffIdenticalFreezes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Diff Study")
	visit := f.mustVisit(t, study.ID, "Screening")
	activity := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, visit.ID, activity.ID, "X")

	left := f.mustFreeze(t, study.ID, "")
	right := f.mustFreeze(t, study.ID, "")

	result, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(result.Visits.Added)+len(result.Visits.Removed) != 0 {
		t.Errorf("visit changes on identical freezes: %+v", result.Visits)
	}
	if len(result.Activities.Added)+len(result.Activities.Removed) != 0 {
		t.Errorf("activity changes on identical freezes: %+v", result.Activities)
	}
	if len(result.Cells.Added)+len(result.Cells.Removed)+len(result.Cells.Changed) != 0 {
		t.Errorf("cell changes on identical freezes: %+v", result.Cells)
	}
	if len(result.Concepts) != 0 {
		t.Errorf("concept changes on identical freezes: %+v", result.Concepts)
	}
	if result.Left.ID != left.ID || result.Right.ID != right.ID {
		t.Errorf("freeze refs mismatch: %+v", result)
	}
}

func TestDiffDetectsChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Change Study")
	v1 := f.mustVisit(t, study.ID, "Screening")
	a1 := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, v1.ID, a1.ID, "X")

	left := f.mustFreeze(t, study.ID, "before")

	// Add a visit, flip the cell status, change a concept set.
	v2 := f.mustVisit(t, study.ID, "Week 1")
	f.mustCell(t, study.ID, v1.ID, a1.ID, "O")
	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, a1.ID, []ConceptAssignment{
		{Code: "C71388", Title: "ECG Test"},
	}); err != nil {
		t.Fatalf("set concepts: %v", err)
	}

	right := f.mustFreeze(t, study.ID, "after")

	result, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}

	if len(result.Visits.Added) != 1 || result.Visits.Added[0].ID != v2.ID {
		t.Errorf("visit added mismatch: %+v", result.Visits.Added)
	}
	if len(result.Visits.Removed) != 0 {
		t.Errorf("unexpected removed visits: %+v", result.Visits.Removed)
	}
	if len(result.Cells.Changed) != 1 {
		t.Fatalf("expected one changed cell, got %+v", result.Cells.Changed)
	}
	ch := result.Cells.Changed[0]
	if ch.OldStatus != "X" || ch.NewStatus != "O" {
		t.Errorf("cell change statuses: got old=%q new=%q", ch.OldStatus, ch.NewStatus)
	}
	if len(result.Concepts) != 1 || result.Concepts[0].ActivityID != a1.ID {
		t.Fatalf("concept diff mismatch: %+v", result.Concepts)
	}
	if len(result.Concepts[0].Added) != 1 || result.Concepts[0].Added[0] != "C71388" {
		t.Errorf("concept added mismatch: %+v", result.Concepts[0])
	}

	// Swapped arguments invert the report.
	inverted, err := f.diff.Diff(ctx, study.ID, right.ID, left.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("inverted diff: %v", err)
	}
	if len(inverted.Visits.Removed) != 1 || inverted.Visits.Removed[0].ID != v2.ID {
		t.Errorf("inverted diff visits: %+v", inverted.Visits)
	}
	if len(inverted.Concepts) != 1 || len(inverted.Concepts[0].Removed) != 1 {
		t.Errorf("inverted concept diff: %+v", inverted.Concepts)
	}
}

func TestDiffConceptTitleChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Title Study")
	a1 := f.mustActivity(t, study.ID, "Vitals")

	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, a1.ID, []ConceptAssignment{
		{Code: "C100", Title: "Old Title"},
	}); err != nil {
		t.Fatalf("set concepts: %v", err)
	}
	left := f.mustFreeze(t, study.ID, "")

	if _, err := f.concept.SetActivityConcepts(ctx, study.ID, a1.ID, []ConceptAssignment{
		{Code: "C100", Title: "New Title"},
	}); err != nil {
		t.Fatalf("reset concepts: %v", err)
	}
	right := f.mustFreeze(t, study.ID, "")

	result, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(result.Concepts) != 1 || len(result.Concepts[0].TitleChanges) != 1 {
		t.Fatalf("expected one title change, got %+v", result.Concepts)
	}
	tc := result.Concepts[0].TitleChanges[0]
	if tc.Code != "C100" || tc.OldTitle != "Old Title" || tc.NewTitle != "New Title" {
		t.Errorf("title change mismatch: %+v", tc)
	}
}

func TestDiffTruncation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Truncation Study")

	left := f.mustFreeze(t, study.ID, "empty")
	for i := 0; i < 120; i++ {
		f.mustVisit(t, study.ID, fmt.Sprintf("Visit %03d", i+1))
	}
	right := f.mustFreeze(t, study.ID, "full")

	result, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(result.Visits.Added) != DefaultDiffLimit {
		t.Errorf("truncated added length: got=%d want=%d", len(result.Visits.Added), DefaultDiffLimit)
	}
	if !result.Meta.Visits.AddedTruncated {
		t.Error("expected added_truncated=true")
	}
	if result.Meta.Visits.AddedTotal != 120 {
		t.Errorf("added_total: got=%d want=120", result.Meta.Visits.AddedTotal)
	}
	if result.Meta.Visits.RemovedTruncated || result.Meta.Visits.RemovedTotal != 0 {
		t.Errorf("removed meta mismatch: %+v", result.Meta.Visits)
	}

	// The bulk limit lists everything here.
	bulk, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, BulkDiffLimit)
	if err != nil {
		t.Fatalf("bulk diff: %v", err)
	}
	if len(bulk.Visits.Added) != 120 || bulk.Meta.Visits.AddedTruncated {
		t.Errorf("bulk diff should not truncate: len=%d meta=%+v", len(bulk.Visits.Added), bulk.Meta.Visits)
	}

	// limit <= 0 is unbounded.
	unbounded, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, 0)
	if err != nil {
		t.Fatalf("unbounded diff: %v", err)
	}
	if len(unbounded.Visits.Added) != 120 {
		t.Errorf("unbounded diff truncated: len=%d", len(unbounded.Visits.Added))
	}
}

func TestDiffMissingFreeze(t *testing.T) {
	f := newFixture(t)
	study := f.mustStudy(t, "Missing Freeze Study")
	left := f.mustFreeze(t, study.ID, "")

	_, err := f.diff.Diff(context.Background(), study.ID, left.ID, 9999, DefaultDiffLimit)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestDiffCorruptSideDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Corrupt Diff Study")
	f.mustVisit(t, study.ID, "Screening")

	left := f.mustFreeze(t, study.ID, "good")
	right := f.mustFreeze(t, study.ID, "bad")

	if err := f.db.Exec(
		"UPDATE soa_freeze SET snapshot_json = ? WHERE id = ?", "{not json", right.ID,
	).Error; err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}

	result, err := f.diff.Diff(ctx, study.ID, left.ID, right.ID, DefaultDiffLimit)
	if err != nil {
		t.Fatalf("diff with corrupt side: %v", err)
	}
	// The corrupt right side reads as empty, so the visit shows as removed.
	if len(result.Visits.Removed) != 1 || len(result.Visits.Added) != 0 {
		t.Errorf("corrupt-side diff mismatch: %+v", result.Visits)
	}
}
