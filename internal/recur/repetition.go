package recur

import (
	"fmt"
	"iter"

	"spendcal/internal/calendar"
)

// End decides when a repeating schedule stops.
type End interface {
	String() string
	isEnd()
}

// Never is an End for schedules that repeat forever.
type Never struct{}

// Until stops a schedule at the last occurrence on or before Date.
type Until struct {
	Date calendar.Date
}

// Count stops a schedule after N steps past the anchor.
type Count struct {
	N int
}

func (Never) String() string { return "never ending" }

func (u Until) String() string { return "ending on " + u.Date.String() }

func (c Count) String() string {
	if c.N == 1 {
		return "ending after 1 occurrence"
	}
	return fmt.Sprintf("ending after %d occurrences", c.N)
}

func (Never) isEnd() {}
func (Until) isEnd() {}
func (Count) isEnd() {}

// Repetition is a full schedule: a step rule plus an end rule. A nil End
// behaves like Never.
type Repetition struct {
	Delta Delta
	End   End
}

func (r Repetition) String() string {
	switch r.End.(type) {
	case nil, Never:
		return r.Delta.String()
	}
	return r.Delta.String() + " " + r.End.String()
}

// Last returns the final occurrence of the schedule anchored at anchor.
// The boolean is false when the schedule never ends.
//
// For Count the step is applied N times (N <= 0 returns the anchor). For
// Until the schedule advances while it stays on or before the end date; an
// anchor already at or past the end date is returned unchanged.
func (r Repetition) Last(anchor calendar.Date) (calendar.Date, bool) {
	switch end := r.End.(type) {
	case Count:
		cur := anchor
		for range max(end.N, 0) {
			cur = r.Delta.Next(cur)
		}
		return cur, true
	case Until:
		cur := anchor
		for cur.Before(end.Date) {
			next := r.Delta.Next(cur)
			if next.After(end.Date) || !next.After(cur) {
				break
			}
			cur = next
		}
		return cur, true
	}
	return calendar.Date{}, false
}

// LastOrMax is Last with never ending schedules reported as
// calendar.MaxDate.
func (r Repetition) LastOrMax(anchor calendar.Date) calendar.Date {
	if last, ok := r.Last(anchor); ok {
		return last
	}
	return calendar.MaxDate
}

// Occurrences yields the anchor followed by every step of the schedule,
// stopping where Last would. Never ending schedules stop only when a step
// fails to advance, so callers must bound the iteration themselves.
func (r Repetition) Occurrences(anchor calendar.Date) iter.Seq[calendar.Date] {
	return func(yield func(calendar.Date) bool) {
		if !yield(anchor) {
			return
		}
		cur := anchor
		for i := 0; ; i++ {
			if c, ok := r.End.(Count); ok && i >= c.N {
				return
			}
			next := r.Delta.Next(cur)
			if !next.After(cur) {
				if _, counted := r.End.(Count); !counted {
					return
				}
			}
			if u, ok := r.End.(Until); ok && next.After(u.Date) {
				return
			}
			if !yield(next) {
				return
			}
			cur = next
		}
	}
}

// Between yields the occurrences that fall within [from, to].
func (r Repetition) Between(anchor, from, to calendar.Date) iter.Seq[calendar.Date] {
	return func(yield func(calendar.Date) bool) {
		for d := range r.Occurrences(anchor) {
			if d.After(to) {
				return
			}
			if d.Before(from) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Take collects at most n dates from seq.
func Take(seq iter.Seq[calendar.Date], n int) []calendar.Date {
	out := make([]calendar.Date, 0, max(n, 0))
	if n <= 0 {
		return out
	}
	for d := range seq {
		out = append(out, d)
		if len(out) == n {
			break
		}
	}
	return out
}
