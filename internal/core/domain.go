package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   Kind = "income"
	Expense  Kind = "expense"
	Transfer Kind = "transfer"
)

const (
	Weekly  RecurrencePattern = "weekly"
	Monthly RecurrencePattern = "monthly"
	Yearly  RecurrencePattern = "yearly"
)

type (
	Kind string

	RecurrencePattern string

	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID                int64
		OwnerID           int64
		Kind              Kind
		Category          Category
		Amount            Money
		Description       string
		OccursOn          Date
		Notes             string
		Tags              []string
		IsRecurring       bool
		RecurrencePattern RecurrencePattern
		RecurrenceEndDate Date
	}
)

// Income and expense category sets are disjoint; transfers carry the single
// transfer category and stay out of every aggregation.
const (
	CategorySalary      Category = "salary"
	CategoryFreelance   Category = "freelance"
	CategoryInvestment  Category = "investment"
	CategoryRental      Category = "rental"
	CategoryGift        Category = "gift"
	CategoryOtherIncome Category = "other_income"

	CategoryFood         Category = "food"
	CategoryTransport    Category = "transport"
	CategoryHousing      Category = "housing"
	CategoryUtilities    Category = "utilities"
	CategoryHealthcare   Category = "healthcare"
	CategoryEntertain    Category = "entertainment"
	CategoryShopping     Category = "shopping"
	CategoryEducation    Category = "education"
	CategoryTravel       Category = "travel"
	CategoryOtherExpense Category = "other_expense"

	CategoryTransfer Category = "transfer"
)

var incomeCategories = map[Category]struct{}{
	CategorySalary:      {},
	CategoryFreelance:   {},
	CategoryInvestment:  {},
	CategoryRental:      {},
	CategoryGift:        {},
	CategoryOtherIncome: {},
}

var expenseCategories = map[Category]struct{}{
	CategoryFood:         {},
	CategoryTransport:    {},
	CategoryHousing:      {},
	CategoryUtilities:    {},
	CategoryHealthcare:   {},
	CategoryEntertain:    {},
	CategoryShopping:     {},
	CategoryEducation:    {},
	CategoryTravel:       {},
	CategoryOtherExpense: {},
}

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidState      = errors.New("invalid goal state")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyTitle        = errors.New("empty title")
	ErrUnknownKind       = errors.New("unknown transaction kind")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrCategoryMismatch  = errors.New("category does not match transaction kind")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidDate       = errors.New("invalid date")
)

// NewDate creates a calendar date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is unset (optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense, Transfer:
		return nil
	default:
		return ErrUnknownKind
	}
}

// MatchesKind reports whether the category is legal for the given kind.
// Income and expense categories are disjoint sets enforced at the write
// boundary, not by the type system.
func (c Category) MatchesKind(k Kind) bool {
	switch k {
	case Income:
		_, ok := incomeCategories[c]
		return ok
	case Expense:
		_, ok := expenseCategories[c]
		return ok
	case Transfer:
		return c == CategoryTransfer
	default:
		return false
	}
}

func (c Category) known() bool {
	if c == CategoryTransfer {
		return true
	}
	if _, ok := incomeCategories[c]; ok {
		return true
	}
	_, ok := expenseCategories[c]
	return ok
}

func (p RecurrencePattern) Validate() error {
	switch p {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidRecurrence
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if !t.Category.known() {
		return ErrUnknownCategory
	}
	if !t.Category.MatchesKind(t.Kind) {
		return ErrCategoryMismatch
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.OccursOn.Validate(); err != nil {
		return err
	}
	if t.IsRecurring {
		if err := t.RecurrencePattern.Validate(); err != nil {
			return err
		}
		if !t.RecurrenceEndDate.IsEmpty() && t.RecurrenceEndDate.Before(t.OccursOn) {
			return ErrInvalidRecurrence
		}
	} else if t.RecurrencePattern != "" {
		return ErrInvalidRecurrence
	}
	return nil
}
