// Package recur models repeating schedules: how a schedule advances from
// one occurrence to the next (Delta), when it stops (End), and the
// combination of both (Repetition). It also parses the free text schedule
// descriptions users type ("every 2 weeks on mon, thu", "quarterly",
// "after 6 times").
//
// Everything here is a pure computation over calendar.Date values.
package recur

import (
	"fmt"
	"slices"
	"strings"

	"spendcal/internal/calendar"
)

// Delta advances a date to the next occurrence of a schedule.
type Delta interface {
	Next(from calendar.Date) calendar.Date
	String() string
	isDelta()
}

// Next applies a single step of delta to from.
func Next(from calendar.Date, delta Delta) calendar.Date {
	return delta.Next(from)
}

// DayDelta repeats every Nth day.
type DayDelta struct {
	Nth int
}

func (d DayDelta) Next(from calendar.Date) calendar.Date {
	return from.Add(calendar.Days(d.Nth))
}

func (d DayDelta) String() string {
	if d.Nth == 1 {
		return "day"
	}
	return fmt.Sprintf("%d days", d.Nth)
}

// WeekDelta repeats every Nth week. A step first moves forward to the last
// weekday listed in On and then adds Nth weeks, so only the final entry of
// On decides where the schedule lands. On must not be empty.
type WeekDelta struct {
	Nth int
	On  []calendar.Weekday
}

func (w WeekDelta) Next(from calendar.Date) calendar.Date {
	target := w.On[len(w.On)-1]
	return from.NextWeekday(target).Add(calendar.Weeks(w.Nth))
}

func (w WeekDelta) String() string {
	var sb strings.Builder
	if w.Nth == 1 {
		sb.WriteString("week on ")
	} else {
		fmt.Fprintf(&sb, "%d weeks on ", w.Nth)
	}
	for i, day := range w.On {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(day.String())
	}
	return sb.String()
}

// MonthDateDelta repeats every Nth month on a day of the month. Days must
// not be empty.
//
// When from is earlier in its month than the smallest listed day, the
// current month still counts, so the step advances Nth-1 months. The
// resulting day is the largest listed day, clamped to the month length.
type MonthDateDelta struct {
	Nth  int
	Days []int
}

func (m MonthDateDelta) Next(from calendar.Date) calendar.Date {
	n := m.Nth
	if from.Day < slices.Min(m.Days) {
		n--
	}
	end := from.Add(calendar.Months(n))
	end.Day = min(slices.Max(m.Days), calendar.DaysInMonth(end.Year, end.Month))
	return end
}

func (m MonthDateDelta) String() string {
	var sb strings.Builder
	if m.Nth == 1 {
		sb.WriteString("month on the ")
	} else {
		fmt.Fprintf(&sb, "%d months on the ", m.Nth)
	}
	for i, day := range m.Days {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d%s", day, daySuffix(day))
	}
	return sb.String()
}

// MonthWeekDelta repeats every Nth month on the Ordinal-th Weekday of the
// month. Ordinal is 1-based: 1 is the first such weekday.
type MonthWeekDelta struct {
	Nth     int
	Ordinal int
	Weekday calendar.Weekday
}

func (m MonthWeekDelta) Next(from calendar.Date) calendar.Date {
	candidate := m.inMonth(from)
	n := m.Nth
	if from.Day < candidate.Day {
		n--
	}
	return m.inMonth(from.Add(calendar.Months(n)))
}

// inMonth returns the Ordinal-th Weekday counted from the first of d's
// month. A fifth occurrence may spill into the following month.
func (m MonthWeekDelta) inMonth(d calendar.Date) calendar.Date {
	first := calendar.FromYMD(d.Year, d.Month, 1).NextWeekday(m.Weekday)
	return first.Add(calendar.Weeks(m.Ordinal - 1))
}

func (m MonthWeekDelta) String() string {
	unit := "month"
	if m.Nth != 1 {
		unit = fmt.Sprintf("%d months", m.Nth)
	}
	return fmt.Sprintf("%s on the %s %s", unit, ordinalName(m.Ordinal), m.Weekday)
}

// YearDelta repeats every Nth year on the same month and day, clamping
// February 29 in common years.
type YearDelta struct {
	Nth int
}

func (y YearDelta) Next(from calendar.Date) calendar.Date {
	return from.Add(calendar.Years(y.Nth))
}

func (y YearDelta) String() string {
	if y.Nth == 1 {
		return "year"
	}
	return fmt.Sprintf("%d years", y.Nth)
}

func (DayDelta) isDelta()       {}
func (WeekDelta) isDelta()      {}
func (MonthDateDelta) isDelta() {}
func (MonthWeekDelta) isDelta() {}
func (YearDelta) isDelta()      {}

func daySuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	}
	return "th"
}

var ordinalNames = []string{"first", "second", "third", "fourth", "fifth"}

func ordinalName(n int) string {
	if n < 1 || n > len(ordinalNames) {
		return fmt.Sprintf("%d%s", n, daySuffix(n))
	}
	return ordinalNames[n-1]
}
