package services

import (
	"context"
	"testing"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/types"
)

func TestVisitCreateAssignsOrderAndHeader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Visit Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	if v1.OrderIndex != 1 {
		t.Errorf("first visit order: got=%d want=1", v1.OrderIndex)
	}
	// Raw header defaults to the name when omitted.
	if v1.RawHeader != "Screening" {
		t.Errorf("raw header default: got=%q", v1.RawHeader)
	}

	v2, err := f.visit.Create(ctx, study.ID, "Week 1", "Wk 1 (Day 7)", nil)
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if v2.OrderIndex != 2 || v2.RawHeader != "Wk 1 (Day 7)" {
		t.Errorf("second visit mismatch: %+v", v2)
	}
}

func TestVisitCreateRejectsForeignEpoch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustStudy(t, "Study A")
	b := f.mustStudy(t, "Study B")

	epochB, err := f.epoch.Create(ctx, b.ID, EpochCreate{Name: "Treatment"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}

	_, err = f.visit.Create(ctx, a.ID, "Screening", "", &epochB.ID)
	if !apierr.IsCode(err, apierr.CodeInvalid) {
		t.Errorf("expected invalid for foreign epoch, got %v", err)
	}
}

func TestVisitDeleteCascadesAndReindexes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Cascade Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	v2 := f.mustVisit(t, study.ID, "Week 1")
	v3 := f.mustVisit(t, study.ID, "Week 2")
	activity := f.mustActivity(t, study.ID, "ECG")
	f.mustCell(t, study.ID, v2.ID, activity.ID, "X")

	if err := f.visit.Delete(ctx, study.ID, v2.ID); err != nil {
		t.Fatalf("delete visit: %v", err)
	}

	visits, err := f.visit.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	// Dense 1..N after the delete.
	if visits[0].ID != v1.ID || visits[0].OrderIndex != 1 || visits[1].ID != v3.ID || visits[1].OrderIndex != 2 {
		t.Errorf("reindex mismatch: %+v", visits)
	}

	matrix, err := f.cell.Matrix(ctx, study.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Cells) != 0 {
		t.Errorf("cells not cascaded: %+v", matrix.Cells)
	}
}

func TestVisitReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Reorder Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	v2 := f.mustVisit(t, study.ID, "Week 1")
	v3 := f.mustVisit(t, study.ID, "Week 2")

	oldOrder, err := f.visit.Reorder(ctx, study.ID, []uint{v3.ID, v1.ID, v2.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if len(oldOrder) != 3 || oldOrder[0] != v1.ID {
		t.Errorf("old order mismatch: %v", oldOrder)
	}

	visits, err := f.visit.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if visits[0].ID != v3.ID || visits[1].ID != v1.ID || visits[2].ID != v2.ID {
		t.Errorf("new order not applied: %+v", visits)
	}

	// Unknown ids are rejected before any write.
	if _, err := f.visit.Reorder(ctx, study.ID, []uint{v1.ID, 9999}); !apierr.IsCode(err, apierr.CodeInvalid) {
		t.Errorf("expected invalid for unknown id, got %v", err)
	}

	entries, err := f.audit.ListReorderAudit(ctx, study.ID)
	if err != nil {
		t.Fatalf("list reorder audit: %v", err)
	}
	if len(entries) != 1 || entries[0].EntityKind != types.EntityKindVisit {
		t.Errorf("reorder audit mismatch: %+v", entries)
	}
}

func TestVisitReorderNoOpSkipsAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "NoOp Study")

	v1 := f.mustVisit(t, study.ID, "Screening")
	v2 := f.mustVisit(t, study.ID, "Week 1")

	if _, err := f.visit.Reorder(ctx, study.ID, []uint{v1.ID, v2.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	entries, err := f.audit.ListReorderAudit(ctx, study.ID)
	if err != nil {
		t.Fatalf("list reorder audit: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no-op reorder recorded: %+v", entries)
	}
}

func TestVisitAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Trail Study")

	visit := f.mustVisit(t, study.ID, "Screening")
	newName := "Screening Visit"
	if _, err := f.visit.Update(ctx, study.ID, visit.ID, VisitUpdate{Name: &newName}); err != nil {
		t.Fatalf("update visit: %v", err)
	}
	if err := f.visit.Delete(ctx, study.ID, visit.ID); err != nil {
		t.Fatalf("delete visit: %v", err)
	}

	entries, err := f.audit.ListEntityAudit(ctx, study.ID, types.EntityKindVisit)
	if err != nil {
		t.Fatalf("list entity audit: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit rows, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Action != types.AuditActionDelete || entries[2].Action != types.AuditActionCreate {
		t.Errorf("audit ordering mismatch: %+v", entries)
	}
}
