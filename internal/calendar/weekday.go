package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is a day of the week. Monday is the zero value.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "Weekday(" + strconv.Itoa(int(w)) + ")"
	}
	return weekdayNames[w]
}

// Abbrev returns the lowercase three letter form ("mon", "tue", ...).
func (w Weekday) Abbrev() string {
	return strings.ToLower(w.String()[:3])
}

// ParseWeekday accepts full names and three letter abbreviations in any case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if s == lower || s == lower[:3] {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(w.String())), nil
}

func (w *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// cumulative days before each month in a common year
var monthOffset = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// WeekdayOf returns the day of the week of date.
//
// The count starts from 1700-01-01, a Friday. January and February are
// treated as the tail of the previous year so the leap day correction
// only applies once February is over.
func WeekdayOf(date Date) Weekday {
	afterFeb := 0
	if date.Month <= 2 {
		afterFeb = 1
	}
	aux := date.Year - 1700 - afterFeb
	days := 4 +
		(aux+afterFeb)*365 +
		floorDiv(aux, 4) - floorDiv(aux, 100) + floorDiv(aux+100, 400) +
		monthOffset[date.Month-1] + date.Day - 1
	return Weekday(floorMod(days, 7))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d)
}

// NextWeekday returns the first date on or after d that falls on w.
func (d Date) NextWeekday(w Weekday) Date {
	return d.AddDays(floorMod(int(w)-int(d.Weekday()), 7))
}
