// Package calendar implements the plain calendar date type used by every
// schedule computation: a year/month/day triple with calendar-correct
// arithmetic in day, week, month and year units.
//
// All dates are proleptic Gregorian. There is no handling of calendar
// reforms, time zones or clock times; a Date is just a day on the calendar.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// Date is a calendar day. Dates are values: arithmetic returns a new Date
// and never modifies the receiver.
type Date struct {
	Year  int
	Month int
	Day   int
}

// MaxDate is the capped "end of time" used when a schedule never ends and
// a concrete date is still required for display.
var MaxDate = Date{Year: 9999, Month: 12, Day: 31}

// RangeError reports a date component outside its valid range.
type RangeError struct {
	Component string
	Value     int
	Min       int
	Max       int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Component, e.Value, e.Min, e.Max)
}

// New returns the date year-month-day, validating month and day.
func New(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, &RangeError{Component: "month", Value: month, Min: 1, Max: 12}
	}
	if dim := DaysInMonth(year, month); day < 1 || day > dim {
		return Date{}, &RangeError{Component: "day", Value: day, Min: 1, Max: dim}
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustNew is like New but panics on an invalid date.
func MustNew(year, month, day int) Date {
	d, err := New(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// FromYMD builds a Date without validation. The caller guarantees that
// month is in 1..12 and day is within the month; arithmetic on an invalid
// Date gives unspecified results.
func FromYMD(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Parse parses a YYYY-MM-DD literal.
func Parse(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		ymd[i] = n
	}
	d, err := New(ymd[0], ymd[1], ymd[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year. It panics if month is
// not in 1..12.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	panic(fmt.Sprintf("calendar: month %d out of range", month))
}

// Valid reports whether d names an existing calendar day.
func (d Date) Valid() bool {
	return d.Month >= 1 && d.Month <= 12 && d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// Compare returns -1, 0 or +1 ordering d against o by year, month, day.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders YYYY-MM-DD. Years above 9999 print with more digits.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
