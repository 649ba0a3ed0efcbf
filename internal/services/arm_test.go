package services

import (
	"context"
	"testing"
)

func TestArmUIDSmallestUnused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Arm Study")

	a1, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "Placebo"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	a2, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "Low Dose"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	a3, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "High Dose"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	if a1.ArmUID != "StudyArm_1" || a2.ArmUID != "StudyArm_2" || a3.ArmUID != "StudyArm_3" {
		t.Errorf("uid allocation: %q %q %q", a1.ArmUID, a2.ArmUID, a3.ArmUID)
	}

	// Deleting the middle arm frees its number for the next create.
	if err := f.arm.Delete(ctx, study.ID, a2.ID); err != nil {
		t.Fatalf("delete arm: %v", err)
	}
	a4, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "Mid Dose"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	if a4.ArmUID != "StudyArm_2" {
		t.Errorf("freed uid not reused: got=%q want=StudyArm_2", a4.ArmUID)
	}
}

func TestArmUIDScopedPerStudy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustStudy(t, "Study A")
	b := f.mustStudy(t, "Study B")

	armA, err := f.arm.Create(ctx, a.ID, ArmCreate{Name: "Placebo"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	armB, err := f.arm.Create(ctx, b.ID, ArmCreate{Name: "Placebo"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	if armA.ArmUID != "StudyArm_1" || armB.ArmUID != "StudyArm_1" {
		t.Errorf("uid scoping: %q %q", armA.ArmUID, armB.ArmUID)
	}
}

func TestArmDeleteReindexes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	study := f.mustStudy(t, "Arm Index Study")

	a1, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "Placebo"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	a2, err := f.arm.Create(ctx, study.ID, ArmCreate{Name: "Active"})
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}

	if err := f.arm.Delete(ctx, study.ID, a1.ID); err != nil {
		t.Fatalf("delete arm: %v", err)
	}
	arms, err := f.arm.List(ctx, study.ID)
	if err != nil {
		t.Fatalf("list arms: %v", err)
	}
	if len(arms) != 1 || arms[0].ID != a2.ID || arms[0].OrderIndex != 1 {
		t.Errorf("reindex mismatch: %+v", arms)
	}
}
