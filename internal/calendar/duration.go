package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the unit of a calendar Duration.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

var unitNames = [...]string{Day: "day", Week: "week", Month: "month", Year: "year"}

func (u Unit) String() string {
	if u < Day || u > Year {
		return "Unit(" + strconv.Itoa(int(u)) + ")"
	}
	return unitNames[u]
}

// Duration is a calendar offset such as "3 weeks" or "1 month". Its length
// in days depends on the date it is applied to.
type Duration struct {
	Unit Unit
	N    int
}

func Days(n int) Duration   { return Duration{Unit: Day, N: n} }
func Weeks(n int) Duration  { return Duration{Unit: Week, N: n} }
func Months(n int) Duration { return Duration{Unit: Month, N: n} }
func Years(n int) Duration  { return Duration{Unit: Year, N: n} }

// String renders "1 day", "3 weeks", ...
func (d Duration) String() string {
	name := d.Unit.String()
	if d.N != 1 {
		name += "s"
	}
	return fmt.Sprintf("%d %s", d.N, name)
}

var durationPattern = regexp.MustCompile(`^(\d+)\s*(day|week|month|year)s?$`)

// ParseDuration parses "<n> <unit>[s]" where unit is day, week, month or
// year.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Duration{}, fmt.Errorf("invalid duration %q: only day/week/month/year(s) accepted", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	for u, name := range unitNames {
		if name == m[2] {
			return Duration{Unit: Unit(u), N: n}, nil
		}
	}
	return Duration{}, fmt.Errorf("invalid duration %q", s)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
