package services

import (
	"context"
	"testing"
)

func TestSetCellUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Cell Study")
	visit := f.mustVisit(t, study.ID, "Screening")
	activity := f.mustActivity(t, study.ID, "ECG")

	created, err := f.cell.SetCell(ctx, study.ID, visit.ID, activity.ID, "X")
	if err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if created.CellID == nil || created.Deleted {
		t.Fatalf("unexpected create result: %+v", created)
	}

	updated, err := f.cell.SetCell(ctx, study.ID, visit.ID, activity.ID, "O")
	if err != nil {
		t.Fatalf("update cell: %v", err)
	}
	if updated.CellID == nil || *updated.CellID != *created.CellID || updated.Status != "O" {
		t.Errorf("expected in-place update, got %+v", updated)
	}

	matrix, err := f.cell.Matrix(ctx, study.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Cells) != 1 || matrix.Cells[0].Status != "O" {
		t.Errorf("matrix mismatch: %+v", matrix.Cells)
	}
}

func TestSetCellBlankStatusClearsRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Clear Study")
	visit := f.mustVisit(t, study.ID, "Screening")
	activity := f.mustActivity(t, study.ID, "ECG")

	f.mustCell(t, study.ID, visit.ID, activity.ID, "X")

	result, err := f.cell.SetCell(ctx, study.ID, visit.ID, activity.ID, "  ")
	if err != nil {
		t.Fatalf("clear cell: %v", err)
	}
	if !result.Deleted {
		t.Errorf("expected deleted result, got %+v", result)
	}

	matrix, err := f.cell.Matrix(ctx, study.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Cells) != 0 {
		t.Errorf("blank status left a row behind: %+v", matrix.Cells)
	}

	// Clearing a cell that does not exist is a quiet no-op.
	again, err := f.cell.SetCell(ctx, study.ID, visit.ID, activity.ID, "")
	if err != nil {
		t.Fatalf("clear missing cell: %v", err)
	}
	if again.Deleted || again.CellID != nil {
		t.Errorf("expected no-op, got %+v", again)
	}
}
