package recur

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"spendcal/internal/calendar"
)

// ParseError reports a schedule or end description that could not be
// understood.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse schedule %q: %s", e.Input, e.Reason)
}

func parseErr(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

var (
	dayPattern   = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+days?$`)
	weekPattern  = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+weeks?$`)
	monthPattern = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+months?$`)
	yearPattern  = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+years?$`)

	weekdayToken = regexp.MustCompile(`\b(mon(?:day)?|tues?(?:day)?|wed(?:nesday)?|thu(?:rs?)?(?:day)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)s?\b`)
	ordinalToken = regexp.MustCompile(`\b(first|second|third|fourth|1st|2nd|3rd|4th)\b`)
	numberToken  = regexp.MustCompile(`\d+`)
	dateToken    = regexp.MustCompile(`(\d+)-(\d+)-(\d+)`)
)

var ordinals = map[string]int{
	"first": 1, "1st": 1,
	"second": 2, "2nd": 2,
	"third": 3, "3rd": 3,
	"fourth": 4, "4th": 4,
}

// ParseDelta parses a schedule description such as "every 3 weeks on mon,
// wed", "monthly on the 1st, 15th", "quarterly on the second tuesday" or
// "yearly". anchor supplies the defaults for week and month schedules
// without an "on" clause.
func ParseDelta(s string, anchor calendar.Date) (Delta, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return nil, parseErr(s, "empty schedule")
	case strings.Contains(s, "year") || strings.Contains(s, "annual"):
		return parseYear(s)
	case strings.Contains(s, "month") || strings.Contains(s, "quarter"):
		return parseMonth(s, anchor)
	case strings.Contains(s, "week") || strings.Contains(s, "fortnight"):
		return parseWeek(s, anchor)
	}
	return parseDay(s)
}

func parseDay(s string) (Delta, error) {
	nth, err := interval(s, s, dayPattern, map[string]int{"daily": 1, "every day": 1})
	if err != nil {
		return nil, err
	}
	return DayDelta{Nth: nth}, nil
}

func parseYear(s string) (Delta, error) {
	nth, err := interval(s, s, yearPattern, map[string]int{"annually": 1, "yearly": 1, "every year": 1})
	if err != nil {
		return nil, err
	}
	return YearDelta{Nth: nth}, nil
}

func parseWeek(s string, anchor calendar.Date) (Delta, error) {
	head, tail := splitOn(s)
	nth, err := interval(s, head, weekPattern, map[string]int{
		"weekly": 1, "every week": 1, "fortnightly": 2, "every fortnight": 2,
	})
	if err != nil {
		return nil, err
	}
	if tail == "" {
		return WeekDelta{Nth: nth, On: []calendar.Weekday{anchor.Weekday()}}, nil
	}
	days := weekdays(tail)
	if len(days) == 0 {
		return nil, parseErr(s, "no weekday in %q", strings.TrimSpace(tail))
	}
	return WeekDelta{Nth: nth, On: days}, nil
}

func parseMonth(s string, anchor calendar.Date) (Delta, error) {
	head, tail := splitOn(s)
	nth, err := interval(s, head, monthPattern, map[string]int{
		"monthly": 1, "every month": 1, "quarterly": 3, "every quarter": 3,
	})
	if err != nil {
		return nil, err
	}
	if tail == "" {
		return MonthDateDelta{Nth: nth, Days: []int{anchor.Day}}, nil
	}

	if days := weekdays(tail); len(days) > 0 {
		m := ordinalToken.FindString(tail)
		if m == "" {
			return nil, parseErr(s, "weekday without an ordinal (first, second, third or fourth)")
		}
		return MonthWeekDelta{Nth: nth, Ordinal: ordinals[m], Weekday: days[0]}, nil
	}

	var days []int
	for _, m := range numberToken.FindAllString(tail, -1) {
		day, err := strconv.Atoi(m)
		if err != nil || day < 1 || day > 31 {
			return nil, parseErr(s, "day of month %s out of range [1, 31]", m)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, parseErr(s, "no day of month in %q", strings.TrimSpace(tail))
	}
	return MonthDateDelta{Nth: nth, Days: days}, nil
}

// splitOn separates an optional " on ..." clause from the interval part.
// The returned tail keeps the leading " on ".
func splitOn(s string) (head, tail string) {
	if idx := strings.Index(s, " on "); idx >= 0 {
		return s[:idx], s[idx:]
	}
	return s, ""
}

func interval(input, head string, pattern *regexp.Regexp, words map[string]int) (int, error) {
	if n, ok := words[head]; ok {
		return n, nil
	}
	m := pattern.FindStringSubmatch(head)
	if m == nil {
		return 0, parseErr(input, "unrecognized schedule")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, parseErr(input, "bad interval %s", m[1])
	}
	if n < 1 {
		return 0, parseErr(input, "interval must be at least 1")
	}
	return n, nil
}

// weekdays returns the weekdays named in s in order of first appearance.
func weekdays(s string) []calendar.Weekday {
	var out []calendar.Weekday
	for _, m := range weekdayToken.FindAllStringSubmatch(s, -1) {
		wd, err := calendar.ParseWeekday(m[1][:3])
		if err != nil || slices.Contains(out, wd) {
			continue
		}
		out = append(out, wd)
	}
	return out
}

// ParseEnd parses when a schedule stops: blank or "never", a count such as
// "after 5 times", or an end date in YYYY-MM-DD form.
func ParseEnd(s string) (End, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || strings.Contains(s, "never"):
		return Never{}, nil
	case strings.Contains(s, "after") || strings.Contains(s, "times") ||
		strings.Contains(s, "occurrences") || strings.Contains(s, "reps"):
		m := numberToken.FindString(s)
		if m == "" {
			return nil, parseErr(s, "no count in ending schedule")
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, parseErr(s, "bad count %s", m)
		}
		return Count{N: n}, nil
	}

	m := dateToken.FindStringSubmatch(s)
	if m == nil {
		return nil, parseErr(s, "invalid end date")
	}
	var ymd [3]int
	for i, part := range m[1:] {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, parseErr(s, "invalid end date")
		}
		ymd[i] = n
	}
	d, err := calendar.New(ymd[0], ymd[1], ymd[2])
	if err != nil {
		return nil, parseErr(s, "invalid end date: %v", err)
	}
	return Until{Date: d}, nil
}

// ParseRepetition parses a schedule and its end. A blank schedule means the
// item does not repeat and yields a nil Repetition.
func ParseRepetition(schedule, end string, anchor calendar.Date) (*Repetition, error) {
	if strings.TrimSpace(schedule) == "" {
		return nil, nil
	}
	delta, err := ParseDelta(schedule, anchor)
	if err != nil {
		return nil, err
	}
	e, err := ParseEnd(end)
	if err != nil {
		return nil, err
	}
	return &Repetition{Delta: delta, End: e}, nil
}
