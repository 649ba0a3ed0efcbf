package services

import (
	"context"
	"testing"
)

func TestEpochSeqNeverReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Epoch Study")

	e1, err := f.epoch.Create(ctx, study.ID, EpochCreate{Name: "Screening"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	e2, err := f.epoch.Create(ctx, study.ID, EpochCreate{Name: "Treatment"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	if e1.EpochSeq != 1 || e2.EpochSeq != 2 {
		t.Errorf("seq allocation: got %d and %d", e1.EpochSeq, e2.EpochSeq)
	}

	if err := f.epoch.Delete(ctx, study.ID, e2.ID); err != nil {
		t.Fatalf("delete epoch: %v", err)
	}
	e3, err := f.epoch.Create(ctx, study.ID, EpochCreate{Name: "Follow-up"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	// Order index closes the gap; the sequence number does not.
	if e3.EpochSeq != 3 {
		t.Errorf("seq reused after delete: got=%d want=3", e3.EpochSeq)
	}
	if e3.OrderIndex != 2 {
		t.Errorf("order index after delete: got=%d want=2", e3.OrderIndex)
	}

	// The counter survives even when no live epochs remain.
	if err := f.epoch.Delete(ctx, study.ID, e1.ID); err != nil {
		t.Fatalf("delete epoch: %v", err)
	}
	if err := f.epoch.Delete(ctx, study.ID, e3.ID); err != nil {
		t.Fatalf("delete epoch: %v", err)
	}
	e4, err := f.epoch.Create(ctx, study.ID, EpochCreate{Name: "Extension"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	if e4.EpochSeq != 4 {
		t.Errorf("seq after emptying study: got=%d want=4", e4.EpochSeq)
	}
	if e4.OrderIndex != 1 {
		t.Errorf("order index after emptying study: got=%d want=1", e4.OrderIndex)
	}
}

func TestEpochDeleteClearsVisitReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Epoch Ref Study")

	epoch, err := f.epoch.Create(ctx, study.ID, EpochCreate{Name: "Treatment"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	visit, err := f.visit.Create(ctx, study.ID, "Week 1", "", &epoch.ID)
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if visit.EpochID == nil || *visit.EpochID != epoch.ID {
		t.Fatalf("visit not linked to epoch: %+v", visit)
	}

	if err := f.epoch.Delete(ctx, study.ID, epoch.ID); err != nil {
		t.Fatalf("delete epoch: %v", err)
	}

	reloaded, err := f.visit.Get(ctx, study.ID, visit.ID)
	if err != nil {
		t.Fatalf("get visit: %v", err)
	}
	if reloaded.EpochID != nil {
		t.Errorf("dangling epoch reference: %+v", reloaded)
	}
}
