package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
)

// GoalService owns the goal lifecycle: creation, the
// active/paused/completed state machine and contribution arithmetic.
// The cancelled status exists in the model but no operation here sets it.
type GoalService struct {
	goals      GoalStore
	amqpClient *amqp.Client
	locks      *ownerLocks
}

// GoalPatch carries the fields of a goal update; nil fields keep the
// stored value. Status and CurrentAmount are owned by the state machine
// and cannot be patched directly.
type GoalPatch struct {
	Title               *string
	Description         *string
	Type                *core.GoalType
	TargetAmount        *core.Money
	TargetDate          *core.Date
	MonthlyContribution *core.Money
	IsRecurring         *bool
	RecurrencePattern   *core.RecurrencePattern
	RecurrenceEndDate   *core.Date
}

func NewGoalService(goals GoalStore, amqpClient *amqp.Client) *GoalService {
	return &GoalService{
		goals:      goals,
		amqpClient: amqpClient,
		locks:      newOwnerLocks(),
	}
}

// Create persists a new goal. Goals start active with nothing saved.
func (s *GoalService) Create(ctx context.Context, ownerID int64, g core.Goal) (core.Goal, error) {
	g.OwnerID = ownerID
	g.ID = 0
	g.Status = core.GoalActive
	g.CurrentAmount = core.Money{}
	if g.Type == "" {
		g.Type = core.GoalSavings
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}

	stored, err := s.goals.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return stored, nil
}

// Get returns one goal scoped to the owner.
func (s *GoalService) Get(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	return s.goals.GetGoal(ctx, ownerID, id)
}

// List returns all of the owner's goals.
func (s *GoalService) List(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	return s.goals.ListGoals(ctx, ownerID)
}

// Update merges the patch into the stored goal and persists it.
func (s *GoalService) Update(ctx context.Context, ownerID, id int64, patch GoalPatch) (core.Goal, error) {
	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	g, err := s.goals.GetGoal(ctx, ownerID, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal: %w", err)
	}

	applyGoalPatch(&g, patch)

	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}

	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

// Delete removes the owner's goal.
func (s *GoalService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.goals.DeleteGoal(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// Contribute applies a positive amount toward an active goal. Reaching the
// target clamps the saved amount to it and completes the goal; the current
// amount never overshoots.
func (s *GoalService) Contribute(ctx context.Context, ownerID, goalID, cents int64) (core.Goal, error) {
	if cents <= 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}

	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	g, err := s.goals.GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal: %w", err)
	}

	if g.Status != core.GoalActive {
		return core.Goal{}, fmt.Errorf("cannot contribute to %s goal: %w", g.Status, core.ErrInvalidState)
	}

	newCurrent := g.CurrentAmount.Cents + cents
	completed := newCurrent >= g.TargetAmount.Cents
	if completed {
		newCurrent = g.TargetAmount.Cents
		g.Status = core.GoalCompleted
	}
	g.CurrentAmount = core.Money{Cents: newCurrent}

	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("persist contribution: %w", err)
	}

	slog.InfoContext(ctx, "Contribution applied",
		"owner_id", ownerID,
		"goal_id", goalID,
		"amount_cents", cents,
		"current_cents", g.CurrentAmount.Cents,
		"completed", completed)

	if completed {
		s.publishGoalCompleted(ctx, ownerID, goalID)
	}

	return g, nil
}

// Complete forces the goal to completed and its saved amount to the target.
// There is no state guard: this is a manual override, valid from any status.
func (s *GoalService) Complete(ctx context.Context, ownerID, goalID int64) (core.Goal, error) {
	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	g, err := s.goals.GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal: %w", err)
	}

	g.Status = core.GoalCompleted
	g.CurrentAmount = g.TargetAmount

	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("persist completion: %w", err)
	}

	s.publishGoalCompleted(ctx, ownerID, goalID)
	return g, nil
}

// Pause suspends an active goal.
func (s *GoalService) Pause(ctx context.Context, ownerID, goalID int64) (core.Goal, error) {
	return s.transition(ctx, ownerID, goalID, core.GoalActive, core.GoalPaused)
}

// Resume reactivates a paused goal.
func (s *GoalService) Resume(ctx context.Context, ownerID, goalID int64) (core.Goal, error) {
	return s.transition(ctx, ownerID, goalID, core.GoalPaused, core.GoalActive)
}

func (s *GoalService) transition(ctx context.Context, ownerID, goalID int64, from, to core.GoalStatus) (core.Goal, error) {
	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	g, err := s.goals.GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal: %w", err)
	}

	if g.Status != from {
		return core.Goal{}, fmt.Errorf("cannot move %s goal to %s: %w", g.Status, to, core.ErrInvalidState)
	}

	g.Status = to
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("persist transition: %w", err)
	}

	slog.InfoContext(ctx, "Goal transitioned",
		"owner_id", ownerID,
		"goal_id", goalID,
		"from", from,
		"to", to)

	return g, nil
}

func (s *GoalService) publishGoalCompleted(ctx context.Context, ownerID, goalID int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishGoalCompleted(ctx, ownerID, goalID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal completed event",
			"owner_id", ownerID,
			"goal_id", goalID,
			"error", err)
	}
}

func applyGoalPatch(g *core.Goal, patch GoalPatch) {
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.Type != nil {
		g.Type = *patch.Type
	}
	if patch.TargetAmount != nil {
		g.TargetAmount = *patch.TargetAmount
	}
	if patch.TargetDate != nil {
		g.TargetDate = *patch.TargetDate
	}
	if patch.MonthlyContribution != nil {
		g.MonthlyContribution = *patch.MonthlyContribution
	}
	if patch.IsRecurring != nil {
		g.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrencePattern != nil {
		g.RecurrencePattern = *patch.RecurrencePattern
	}
	if patch.RecurrenceEndDate != nil {
		g.RecurrenceEndDate = *patch.RecurrenceEndDate
	}
}
