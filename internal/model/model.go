package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"spendcal/internal/calendar"
	"spendcal/internal/recur"
)

// Expense is a single ledger entry: a one-off or repeating amount of money,
// optionally spread over a period instead of landing on a single day.
type Expense struct {
	ID          uint64 `yaml:"id"`
	Description string `yaml:"description"`

	// Amount in cents. Expenses are negative, income is positive.
	Amount int64 `yaml:"amount"`

	Start calendar.Date `yaml:"start"`

	// End is the last day the expense has any effect; nil when it repeats
	// forever. Derived by NewExpense.
	End *calendar.Date `yaml:"end,omitempty"`

	// Spread distributes each occurrence evenly over a period.
	Spread *calendar.Duration `yaml:"spread,omitempty"`

	Repetition *recur.Repetition `yaml:"repetition,omitempty"`

	Tags []string `yaml:"tags,omitempty"`
}

// NewExpense builds an Expense and derives its end date.
func NewExpense(id uint64, description string, amount int64, start calendar.Date,
	spread *calendar.Duration, repetition *recur.Repetition, tags []string) Expense {
	return Expense{
		ID:          id,
		Description: description,
		Amount:      amount,
		Start:       start,
		End:         EndDate(start, repetition, spread),
		Spread:      spread,
		Repetition:  repetition,
		Tags:        tags,
	}
}

// EndDate returns the last day touched by an expense starting on start:
// the final occurrence of repetition, pushed out by spread. It is nil for
// schedules that never end.
func EndDate(start calendar.Date, repetition *recur.Repetition, spread *calendar.Duration) *calendar.Date {
	end := start
	if repetition != nil {
		last, ok := repetition.Last(start)
		if !ok {
			return nil
		}
		end = last
	}
	if spread != nil {
		end = end.Add(*spread)
	}
	return &end
}

// CompareDates orders expenses by end date, with never ending expenses
// last, and uses the start date to break ties.
func (e *Expense) CompareDates(other *Expense) int {
	switch {
	case e.End == nil && other.End == nil:
		return 0
	case e.End == nil:
		return 1
	case other.End == nil:
		return -1
	}
	if c := e.End.Compare(*other.End); c != 0 {
		return c
	}
	return e.Start.Compare(other.Start)
}

// HasTag reports whether the expense carries tag.
func (e *Expense) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// RemoveTag drops every occurrence of tag.
func (e *Expense) RemoveTag(tag string) {
	e.Tags = slices.DeleteFunc(e.Tags, func(t string) bool { return t == tag })
}

func (e Expense) String() string {
	var sb strings.Builder
	abs := e.Amount
	if abs < 0 {
		abs = -abs
	}
	fmt.Fprintf(&sb, "%s: $%d.%02d on %s", e.Description, abs/100, abs%100, e.Start)

	var extra []string
	if e.Spread != nil {
		extra = append(extra, "spread over "+e.Spread.String())
	}
	if e.Repetition != nil {
		extra = append(extra, "repeats every "+e.Repetition.String())
	}
	if len(extra) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(extra, ", "))
	}

	if len(e.Tags) > 0 {
		sb.WriteString(" tags: " + strings.Join(e.Tags, ", "))
	}
	fmt.Fprintf(&sb, " [id=%d]", e.ID)
	return sb.String()
}

// Occurrence is one concrete day on which a (possibly repeating) expense
// lands.
type Occurrence struct {
	ExpenseID   uint64
	Description string
	Amount      int64
	Date        calendar.Date
}

// CompareOccurrences orders occurrences by date, then expense id.
func CompareOccurrences(a, b Occurrence) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.ExpenseID, b.ExpenseID)
}
