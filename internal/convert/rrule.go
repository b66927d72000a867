// Package convert translates repetitions to and from the schedule formats
// other tools understand: iCalendar RRULEs and 5-field cron expressions.
package convert

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"spendcal/internal/calendar"
	"spendcal/internal/recur"
)

// ErrNotExpressible is returned when a schedule has no exact equivalent in
// the target format.
var ErrNotExpressible = errors.New("schedule not expressible")

var rruleDays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// Time returns midnight UTC on d.
func Time(d calendar.Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) calendar.Date {
	return calendar.FromYMD(t.Year(), int(t.Month()), t.Day())
}

// ToROption describes the steps of rep after anchor as an RRULE. The rule
// starts at the first step, so its instances are exactly the occurrences
// that follow the anchor.
func ToROption(rep recur.Repetition, anchor calendar.Date) (rrule.ROption, error) {
	first := rep.Delta.Next(anchor)
	opt := rrule.ROption{Dtstart: Time(first), Interval: 1}

	switch d := rep.Delta.(type) {
	case recur.DayDelta:
		opt.Freq = rrule.DAILY
		opt.Interval = d.Nth
	case recur.WeekDelta:
		opt.Freq = rrule.WEEKLY
		opt.Interval = d.Nth
		opt.Byweekday = []rrule.Weekday{rruleDays[d.On[len(d.On)-1]]}
	case recur.MonthDateDelta:
		// Short months clamp the day, which the rule mirrors by taking the
		// last existing day in 28..day. A smallest day past 28 makes the
		// step length vary after a clamp.
		if slices.Min(d.Days) > 28 {
			return opt, fmt.Errorf("%w: %s", ErrNotExpressible, d)
		}
		opt.Freq = rrule.MONTHLY
		opt.Interval = d.Nth
		day := slices.Max(d.Days)
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			for n := 28; n <= day; n++ {
				opt.Bymonthday = append(opt.Bymonthday, n)
			}
			opt.Bysetpos = []int{-1}
		}
	case recur.MonthWeekDelta:
		if d.Ordinal < 1 || d.Ordinal > 4 {
			return opt, fmt.Errorf("%w: %s", ErrNotExpressible, d)
		}
		opt.Freq = rrule.MONTHLY
		opt.Interval = d.Nth
		opt.Byweekday = []rrule.Weekday{rruleDays[d.Weekday].Nth(d.Ordinal)}
	case recur.YearDelta:
		// Feb 29 would be skipped by the rule in common years instead of
		// being clamped.
		if first.Month == 2 && first.Day == 29 {
			return opt, fmt.Errorf("%w: %s from %s", ErrNotExpressible, d, anchor)
		}
		opt.Freq = rrule.YEARLY
		opt.Interval = d.Nth
	default:
		return opt, fmt.Errorf("%w: unknown delta %T", ErrNotExpressible, rep.Delta)
	}

	switch end := rep.End.(type) {
	case recur.Count:
		// rrule-go reads COUNT=0 as unbounded.
		if end.N < 1 {
			return opt, fmt.Errorf("%w: no occurrences after the anchor", ErrNotExpressible)
		}
		opt.Count = end.N
	case recur.Until:
		opt.Until = Time(end.Date)
	}
	return opt, nil
}

// ToRRule is ToROption followed by rrule.NewRRule.
func ToRRule(rep recur.Repetition, anchor calendar.Date) (*rrule.RRule, error) {
	opt, err := ToROption(rep, anchor)
	if err != nil {
		return nil, err
	}
	return rrule.NewRRule(opt)
}

// FromRRule parses an RRULE value ("FREQ=WEEKLY;BYDAY=MO") and maps it to
// a Repetition. dtstart supplies the weekday or day of month for rules
// that leave them implicit.
func FromRRule(s string, dtstart calendar.Date) (recur.Repetition, error) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return recur.Repetition{}, err
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = Time(dtstart)
	}
	return FromROption(*opt)
}

// FromROption maps the subset of RRULE produced by ToROption back to a
// Repetition. Hour, minute and other by-rules are rejected. Month ends
// map to a day list starting at 1 so that a clamped step does not stall.
func FromROption(opt rrule.ROption) (recur.Repetition, error) {
	var rep recur.Repetition
	if len(opt.Bymonth) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return rep, fmt.Errorf("%w: unsupported BY rule", ErrNotExpressible)
	}

	nth := max(opt.Interval, 1)
	start := DateOf(opt.Dtstart)

	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return rep, fmt.Errorf("%w: filtered daily rule", ErrNotExpressible)
		}
		rep.Delta = recur.DayDelta{Nth: nth}
	case rrule.WEEKLY:
		if len(opt.Bymonthday) > 0 || len(opt.Byweekday) > 1 {
			return rep, fmt.Errorf("%w: weekly rule on several days", ErrNotExpressible)
		}
		day := start.Weekday()
		if len(opt.Byweekday) == 1 {
			day = calendar.Weekday(opt.Byweekday[0].Day())
		}
		rep.Delta = recur.WeekDelta{Nth: nth, On: []calendar.Weekday{day}}
	case rrule.MONTHLY:
		delta, err := monthlyDelta(opt, nth, start)
		if err != nil {
			return rep, err
		}
		rep.Delta = delta
	case rrule.YEARLY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return rep, fmt.Errorf("%w: filtered yearly rule", ErrNotExpressible)
		}
		rep.Delta = recur.YearDelta{Nth: nth}
	default:
		return rep, fmt.Errorf("%w: frequency %v", ErrNotExpressible, opt.Freq)
	}

	switch {
	case opt.Count > 0:
		rep.End = recur.Count{N: opt.Count}
	case !opt.Until.IsZero():
		rep.End = recur.Until{Date: DateOf(opt.Until)}
	default:
		rep.End = recur.Never{}
	}
	return rep, nil
}

func monthlyDelta(opt rrule.ROption, nth int, start calendar.Date) (recur.Delta, error) {
	switch {
	case len(opt.Byweekday) == 1 && len(opt.Bymonthday) == 0:
		wd := opt.Byweekday[0]
		if wd.N() < 1 || wd.N() > 4 {
			return nil, fmt.Errorf("%w: monthly rule on weekday position %d", ErrNotExpressible, wd.N())
		}
		return recur.MonthWeekDelta{Nth: nth, Ordinal: wd.N(), Weekday: calendar.Weekday(wd.Day())}, nil
	case len(opt.Byweekday) > 0:
		return nil, fmt.Errorf("%w: monthly rule on several weekdays", ErrNotExpressible)
	case len(opt.Bymonthday) == 0:
		if start.Day > 28 {
			return nil, fmt.Errorf("%w: monthly rule skipping short months", ErrNotExpressible)
		}
		return recur.MonthDateDelta{Nth: nth, Days: []int{start.Day}}, nil
	case len(opt.Bymonthday) == 1 && opt.Bymonthday[0] == -1:
		return recur.MonthDateDelta{Nth: nth, Days: []int{1, 31}}, nil
	case len(opt.Bymonthday) == 1 && opt.Bymonthday[0] >= 1 && opt.Bymonthday[0] <= 28:
		return recur.MonthDateDelta{Nth: nth, Days: []int{opt.Bymonthday[0]}}, nil
	case slices.Equal(opt.Bysetpos, []int{-1}) && isClampRun(opt.Bymonthday):
		return recur.MonthDateDelta{Nth: nth, Days: []int{1, slices.Max(opt.Bymonthday)}}, nil
	}
	return nil, fmt.Errorf("%w: monthly rule on days %v", ErrNotExpressible, opt.Bymonthday)
}

// isClampRun reports whether days is 28, 29, ... up to at most 31.
func isClampRun(days []int) bool {
	if len(days) < 2 || len(days) > 4 {
		return false
	}
	for i, d := range days {
		if d != 28+i {
			return false
		}
	}
	return true
}
