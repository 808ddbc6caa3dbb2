package core

import (
	"strings"
	"time"
)

const (
	// GoalActive is the initial status; contributions only apply here.
	GoalActive GoalStatus = "active"
	// GoalPaused suspends contributions until resumed.
	GoalPaused GoalStatus = "paused"
	// GoalCompleted is terminal for the normal flow.
	GoalCompleted GoalStatus = "completed"
	// GoalCancelled has no transition path in this engine; it is accepted
	// from storage but never set by any operation.
	GoalCancelled GoalStatus = "cancelled"
)

const (
	GoalSavings   GoalType = "savings"
	GoalPurchase  GoalType = "purchase"
	GoalDebt      GoalType = "debt"
	GoalEmergency GoalType = "emergency"
	GoalOther     GoalType = "other"
)

type (
	GoalStatus string

	// GoalType is informational only; no engine behavior depends on it.
	GoalType string

	Goal struct {
		ID            int64
		OwnerID       int64
		Title         string
		Description   string
		Type          GoalType
		Status        GoalStatus
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    Date
		// MonthlyContribution is the user-declared plan; zero means unset.
		MonthlyContribution Money
		IsRecurring         bool
		RecurrencePattern   RecurrencePattern
		RecurrenceEndDate   Date
	}
)

func (s GoalStatus) Validate() error {
	switch s {
	case GoalActive, GoalPaused, GoalCompleted, GoalCancelled:
		return nil
	default:
		return ErrInvalidState
	}
}

func (t GoalType) Validate() error {
	switch t {
	case GoalSavings, GoalPurchase, GoalDebt, GoalEmergency, GoalOther:
		return nil
	default:
		return ErrUnknownCategory
	}
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := g.Type.Validate(); err != nil {
		return err
	}
	if err := g.Status.Validate(); err != nil {
		return err
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return err
	}
	if g.IsRecurring {
		if err := g.RecurrencePattern.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Progress is the completion percentage, 0 when the target is non-positive.
func (g Goal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}

// Remaining is the amount still to save, never negative.
func (g Goal) Remaining() Money {
	rem := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if rem < 0 {
		rem = 0
	}
	return Money{Cents: rem}
}

// IsCompleted is true once the target is reached or the status says so.
func (g Goal) IsCompleted() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents || g.Status == GoalCompleted
}

// IsOverdue reports whether the target date has passed on an unfinished goal.
func (g Goal) IsOverdue(now time.Time) bool {
	return now.After(g.TargetDate.Time) && !g.IsCompleted()
}

// DaysRemaining counts the days until the target date, rounded up.
// Negative when the goal is overdue.
func (g Goal) DaysRemaining(now time.Time) int {
	diff := g.TargetDate.Sub(now)
	days := int(diff.Hours() / 24)
	if diff > 0 && diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// SuggestedMonthlyContribution returns the declared monthly plan when set,
// otherwise the remaining amount spread over the months left (at least one).
func (g Goal) SuggestedMonthlyContribution(now time.Time) Money {
	if g.MonthlyContribution.Cents > 0 {
		return g.MonthlyContribution
	}
	months := g.DaysRemaining(now) / 30
	if months < 1 {
		months = 1
	}
	return Money{Cents: g.Remaining().Cents / int64(months)}
}
