package services

import (
	"context"
	"errors"
	"testing"

	"tally/internal/core"
)

func newTestGoal(t *testing.T, svc *GoalService, ownerID int64, targetCents int64) core.Goal {
	t.Helper()
	g, err := svc.Create(context.Background(), ownerID, core.Goal{
		Title:        "Emergency fund",
		Type:         core.GoalEmergency,
		TargetAmount: core.Money{Cents: targetCents},
		TargetDate:   core.NewDate(2026, 12, 31),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return g
}

func TestGoalCreateForcesInitialState(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)

	g, err := svc.Create(context.Background(), 1, core.Goal{
		Title:         "New laptop",
		Status:        core.GoalCompleted,
		CurrentAmount: core.Money{Cents: 99999},
		TargetAmount:  core.Money{Cents: 150000},
		TargetDate:    core.NewDate(2026, 6, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Status != core.GoalActive {
		t.Errorf("status = %q, want active", g.Status)
	}
	if g.CurrentAmount.Cents != 0 {
		t.Errorf("current = %d, want 0", g.CurrentAmount.Cents)
	}
	if g.Type != core.GoalSavings {
		t.Errorf("type = %q, want default savings", g.Type)
	}
}

func TestGoalCreateRejectsInvalid(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)

	tests := []struct {
		name string
		goal core.Goal
		want error
	}{
		{
			name: "empty title",
			goal: core.Goal{TargetAmount: core.Money{Cents: 1000}, TargetDate: core.NewDate(2026, 1, 1)},
			want: core.ErrEmptyTitle,
		},
		{
			name: "zero target",
			goal: core.Goal{Title: "Car", TargetDate: core.NewDate(2026, 1, 1)},
			want: core.ErrInvalidAmount,
		},
		{
			name: "missing target date",
			goal: core.Goal{Title: "Car", TargetAmount: core.Money{Cents: 1000}},
			want: core.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.goal)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoalContributeAccumulates(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 100000)

	g, err := svc.Contribute(ctx, 1, g.ID, 90000)
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if g.CurrentAmount.Cents != 90000 {
		t.Errorf("current = %d, want 90000", g.CurrentAmount.Cents)
	}
	if g.Status != core.GoalActive {
		t.Errorf("status = %q, want active", g.Status)
	}
	if got := g.Progress(); got != 90 {
		t.Errorf("progress = %v, want 90", got)
	}
}

func TestGoalContributeClampsAndCompletes(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 100000)
	if _, err := svc.Contribute(ctx, 1, g.ID, 90000); err != nil {
		t.Fatalf("first contribution: %v", err)
	}

	// 900 saved toward 1000; a 150 contribution overshoots by 50.
	g, err := svc.Contribute(ctx, 1, g.ID, 15000)
	if err != nil {
		t.Fatalf("second contribution: %v", err)
	}
	if g.CurrentAmount.Cents != 100000 {
		t.Errorf("current = %d, want clamped 100000", g.CurrentAmount.Cents)
	}
	if g.Status != core.GoalCompleted {
		t.Errorf("status = %q, want completed", g.Status)
	}
	if got := g.Progress(); got != 100 {
		t.Errorf("progress = %v, want 100", got)
	}
	if g.Remaining().Cents != 0 {
		t.Errorf("remaining = %d, want 0", g.Remaining().Cents)
	}
}

func TestGoalContributeRejectsNonPositive(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	g := newTestGoal(t, svc, 1, 100000)

	for _, cents := range []int64{0, -500} {
		if _, err := svc.Contribute(context.Background(), 1, g.ID, cents); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("contribute %d: err = %v, want %v", cents, err, core.ErrInvalidAmount)
		}
	}
}

func TestGoalContributeRequiresActive(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 100000)
	if _, err := svc.Contribute(ctx, 1, g.ID, 25000); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := svc.Pause(ctx, 1, g.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if _, err := svc.Contribute(ctx, 1, g.ID, 10000); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("contribute while paused: err = %v, want %v", err, core.ErrInvalidState)
	}

	// The rejected contribution must leave the saved amount untouched.
	g, err := svc.Get(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.CurrentAmount.Cents != 25000 {
		t.Errorf("current = %d, want 25000", g.CurrentAmount.Cents)
	}

	if _, err := svc.Resume(ctx, 1, g.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	g, err = svc.Contribute(ctx, 1, g.ID, 5000)
	if err != nil {
		t.Fatalf("contribute after resume: %v", err)
	}
	if g.CurrentAmount.Cents != 30000 {
		t.Errorf("current = %d, want 30000", g.CurrentAmount.Cents)
	}
}

func TestGoalPauseResumeGuards(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 50000)

	if _, err := svc.Resume(ctx, 1, g.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("resume active goal: err = %v, want %v", err, core.ErrInvalidState)
	}

	paused, err := svc.Pause(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != core.GoalPaused {
		t.Errorf("status = %q, want paused", paused.Status)
	}

	if _, err := svc.Pause(ctx, 1, g.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("pause paused goal: err = %v, want %v", err, core.ErrInvalidState)
	}

	resumed, err := svc.Resume(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != core.GoalActive {
		t.Errorf("status = %q, want active", resumed.Status)
	}
}

func TestGoalCompleteOverridesAnyState(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 80000)
	if _, err := svc.Contribute(ctx, 1, g.ID, 10000); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := svc.Pause(ctx, 1, g.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	g, err := svc.Complete(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if g.Status != core.GoalCompleted {
		t.Errorf("status = %q, want completed", g.Status)
	}
	if g.CurrentAmount.Cents != g.TargetAmount.Cents {
		t.Errorf("current = %d, want snapped to target %d", g.CurrentAmount.Cents, g.TargetAmount.Cents)
	}

	if _, err := svc.Contribute(ctx, 1, g.ID, 100); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("contribute to completed goal: err = %v, want %v", err, core.ErrInvalidState)
	}
}

func TestGoalUpdateKeepsStateMachineFields(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g := newTestGoal(t, svc, 1, 100000)
	if _, err := svc.Contribute(ctx, 1, g.ID, 40000); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	title := "Rainy day fund"
	target := core.Money{Cents: 120000}
	updated, err := svc.Update(ctx, 1, g.ID, GoalPatch{Title: &title, TargetAmount: &target})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.TargetAmount.Cents != 120000 {
		t.Errorf("target = %d, want 120000", updated.TargetAmount.Cents)
	}
	if updated.Status != core.GoalActive || updated.CurrentAmount.Cents != 40000 {
		t.Errorf("update touched state machine fields: status=%q current=%d", updated.Status, updated.CurrentAmount.Cents)
	}
}

func TestGoalNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	mine := newTestGoal(t, svc, 1, 100000)

	if _, err := svc.Get(ctx, 1, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get unknown: err = %v, want %v", err, core.ErrNotFound)
	}
	if _, err := svc.Contribute(ctx, 2, mine.ID, 100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner contribute: err = %v, want %v", err, core.ErrNotFound)
	}
	if err := svc.Delete(ctx, 2, mine.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner delete: err = %v, want %v", err, core.ErrNotFound)
	}
	if err := svc.Delete(ctx, 1, mine.ID); err != nil {
		t.Errorf("delete own goal: %v", err)
	}
}
