package recur

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spendcal/internal/calendar"
)

func date(y, m, d int) calendar.Date {
	return calendar.MustNew(y, m, d)
}

func TestDeltaNext(t *testing.T) {
	tests := []struct {
		name  string
		from  calendar.Date
		delta Delta
		want  calendar.Date
	}{
		{"every 3 days", date(2020, 9, 20), DayDelta{Nth: 3}, date(2020, 9, 23)},
		{"days across year", date(2020, 12, 30), DayDelta{Nth: 5}, date(2021, 1, 4)},
		{"week lands on last listed day", date(2020, 9, 20), WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Monday, calendar.Wednesday}}, date(2020, 9, 30)},
		{"week already on weekday", date(2020, 9, 20), WeekDelta{Nth: 2, On: []calendar.Weekday{calendar.Sunday}}, date(2020, 10, 4)},
		{"month on date clamps to leap february", date(2019, 11, 30), MonthDateDelta{Nth: 4, Days: []int{31}}, date(2020, 2, 29)},
		{"month on date still this month", date(2020, 1, 10), MonthDateDelta{Nth: 1, Days: []int{15}}, date(2020, 1, 15)},
		{"month on date next month", date(2020, 1, 15), MonthDateDelta{Nth: 1, Days: []int{15}}, date(2020, 2, 15)},
		{"month on date uses largest day", date(2020, 1, 10), MonthDateDelta{Nth: 1, Days: []int{5, 20}}, date(2020, 2, 20)},
		{"month on weekday still this month", date(2020, 9, 1), MonthWeekDelta{Nth: 1, Ordinal: 2, Weekday: calendar.Tuesday}, date(2020, 9, 8)},
		{"month on weekday next month", date(2020, 9, 8), MonthWeekDelta{Nth: 1, Ordinal: 2, Weekday: calendar.Tuesday}, date(2020, 10, 13)},
		{"first monday", date(2020, 9, 20), MonthWeekDelta{Nth: 1, Ordinal: 1, Weekday: calendar.Monday}, date(2020, 10, 5)},
		{"quarterly third friday", date(2020, 1, 31), MonthWeekDelta{Nth: 3, Ordinal: 3, Weekday: calendar.Friday}, date(2020, 4, 17)},
		{"year", date(2020, 9, 20), YearDelta{Nth: 2}, date(2022, 9, 20)},
		{"year clamps leap day", date(2020, 2, 29), YearDelta{Nth: 1}, date(2021, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.from, tt.delta))
		})
	}
}

func TestWeekDeltaEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { WeekDelta{Nth: 1}.Next(date(2020, 1, 1)) })
}

func TestDeltaString(t *testing.T) {
	tests := []struct {
		delta Delta
		want  string
	}{
		{DayDelta{Nth: 1}, "day"},
		{DayDelta{Nth: 4}, "4 days"},
		{WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Friday}}, "week on Friday"},
		{WeekDelta{Nth: 3, On: []calendar.Weekday{calendar.Monday, calendar.Wednesday}}, "3 weeks on Monday, Wednesday"},
		{MonthDateDelta{Nth: 1, Days: []int{1, 15}}, "month on the 1st, 15th"},
		{MonthDateDelta{Nth: 2, Days: []int{22, 23, 11}}, "2 months on the 22nd, 23rd, 11th"},
		{MonthWeekDelta{Nth: 1, Ordinal: 1, Weekday: calendar.Monday}, "month on the first Monday"},
		{MonthWeekDelta{Nth: 2, Ordinal: 2, Weekday: calendar.Tuesday}, "2 months on the second Tuesday"},
		{YearDelta{Nth: 1}, "year"},
		{YearDelta{Nth: 5}, "5 years"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.delta.String())
	}
}
