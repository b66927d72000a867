package convert

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"spendcal/internal/calendar"
	"spendcal/internal/recur"
)

// cronDOW maps a weekday to cron numbering (Sunday=0).
func cronDOW(w calendar.Weekday) int {
	return (int(w) + 1) % 7
}

// ToCron converts a never ending repetition to a 5-field cron expression
// firing at midnight. Cron has no notion of an anchor, so the expression
// agrees with the repetition from its first step after anchor onwards.
func ToCron(rep recur.Repetition, anchor calendar.Date) (string, error) {
	switch rep.End.(type) {
	case nil, recur.Never:
	default:
		return "", fmt.Errorf("%w: cron cannot end (%s)", ErrNotExpressible, rep.End)
	}

	var expr string
	switch d := rep.Delta.(type) {
	case recur.DayDelta:
		if d.Nth != 1 {
			return "", fmt.Errorf("%w: multi-day intervals", ErrNotExpressible)
		}
		expr = "0 0 * * *"
	case recur.WeekDelta:
		if d.Nth != 1 {
			return "", fmt.Errorf("%w: multi-week intervals", ErrNotExpressible)
		}
		expr = fmt.Sprintf("0 0 * * %d", cronDOW(d.On[len(d.On)-1]))
	case recur.MonthDateDelta:
		if d.Nth != 1 {
			return "", fmt.Errorf("%w: multi-month intervals", ErrNotExpressible)
		}
		day := slices.Max(d.Days)
		if day > 28 {
			return "", fmt.Errorf("%w: day %d is clamped in short months", ErrNotExpressible, day)
		}
		expr = fmt.Sprintf("0 0 %d * *", day)
	case recur.MonthWeekDelta:
		return "", fmt.Errorf("%w: ordinal weekday of month", ErrNotExpressible)
	case recur.YearDelta:
		if d.Nth != 1 {
			return "", fmt.Errorf("%w: multi-year intervals", ErrNotExpressible)
		}
		first := d.Next(anchor)
		expr = fmt.Sprintf("0 0 %d %d *", first.Day, first.Month)
	default:
		return "", fmt.Errorf("%w: unknown delta %T", ErrNotExpressible, rep.Delta)
	}

	if _, err := cron.ParseStandard(expr); err != nil {
		return "", fmt.Errorf("convert: generated invalid cron %q: %w", expr, err)
	}
	return expr, nil
}

// FromCron maps a midnight cron expression of the shapes ToCron produces
// back to a never ending repetition.
func FromCron(expr string) (recur.Repetition, error) {
	var rep recur.Repetition
	if _, err := cron.ParseStandard(expr); err != nil {
		return rep, err
	}

	f := strings.Fields(expr)
	if len(f) != 5 || f[0] != "0" || f[1] != "0" {
		return rep, fmt.Errorf("%w: %q does not fire once at midnight", ErrNotExpressible, expr)
	}
	dom, month, dow := f[2], f[3], f[4]

	switch {
	case dom == "*" && month == "*" && dow == "*":
		rep.Delta = recur.DayDelta{Nth: 1}
	case dom == "*" && month == "*":
		n, err := strconv.Atoi(dow)
		if err != nil || n < 0 || n > 6 {
			return rep, fmt.Errorf("%w: day of week %q", ErrNotExpressible, dow)
		}
		rep.Delta = recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Weekday((n + 6) % 7)}}
	case month == "*" && dow == "*":
		n, err := strconv.Atoi(dom)
		if err != nil || n > 28 {
			return rep, fmt.Errorf("%w: day of month %q", ErrNotExpressible, dom)
		}
		rep.Delta = recur.MonthDateDelta{Nth: 1, Days: []int{n}}
	case dow == "*":
		if _, err := strconv.Atoi(dom); err != nil {
			return rep, fmt.Errorf("%w: day of month %q", ErrNotExpressible, dom)
		}
		if _, err := strconv.Atoi(month); err != nil {
			return rep, fmt.Errorf("%w: month %q", ErrNotExpressible, month)
		}
		rep.Delta = recur.YearDelta{Nth: 1}
	default:
		return rep, fmt.Errorf("%w: %q", ErrNotExpressible, expr)
	}
	rep.End = recur.Never{}
	return rep, nil
}

// NextCron returns the first day after the given date on which the cron
// expression fires.
func NextCron(expr string, after calendar.Date) (calendar.Date, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return calendar.Date{}, err
	}
	next := sched.Next(Time(after))
	if next.IsZero() {
		return calendar.Date{}, fmt.Errorf("cron %q never fires after %s", expr, after)
	}
	return DateOf(next), nil
}
