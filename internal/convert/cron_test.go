package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendcal/internal/calendar"
	"spendcal/internal/recur"
)

func TestToCron(t *testing.T) {
	anchor := date(2020, 9, 20)
	tests := []struct {
		delta recur.Delta
		want  string
	}{
		{recur.DayDelta{Nth: 1}, "0 0 * * *"},
		{recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Friday, calendar.Monday}}, "0 0 * * 1"},
		{recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Sunday}}, "0 0 * * 0"},
		{recur.MonthDateDelta{Nth: 1, Days: []int{15}}, "0 0 15 * *"},
		{recur.YearDelta{Nth: 1}, "0 0 20 9 *"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rep := recur.Repetition{Delta: tt.delta, End: recur.Never{}}
			got, err := ToCron(rep, anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// From the first step on, cron and the engine agree.
			cur := rep.Delta.Next(anchor)
			for range 20 {
				next, err := NextCron(got, cur)
				require.NoError(t, err)
				require.Equal(t, rep.Delta.Next(cur), next, "after %s", cur)
				cur = next
			}
		})
	}
}

func TestToCronNotExpressible(t *testing.T) {
	anchor := date(2020, 9, 20)
	reps := []recur.Repetition{
		{Delta: recur.DayDelta{Nth: 1}, End: recur.Count{N: 3}},
		{Delta: recur.DayDelta{Nth: 1}, End: recur.Until{Date: date(2021, 1, 1)}},
		{Delta: recur.DayDelta{Nth: 2}},
		{Delta: recur.WeekDelta{Nth: 2, On: []calendar.Weekday{calendar.Monday}}},
		{Delta: recur.MonthDateDelta{Nth: 3, Days: []int{1}}},
		{Delta: recur.MonthDateDelta{Nth: 1, Days: []int{1, 31}}},
		{Delta: recur.MonthWeekDelta{Nth: 1, Ordinal: 2, Weekday: calendar.Tuesday}},
		{Delta: recur.YearDelta{Nth: 5}},
	}
	for _, rep := range reps {
		_, err := ToCron(rep, anchor)
		assert.ErrorIs(t, err, ErrNotExpressible, rep.String())
	}
}

func TestFromCron(t *testing.T) {
	tests := []struct {
		expr string
		want recur.Delta
	}{
		{"0 0 * * *", recur.DayDelta{Nth: 1}},
		{"0 0 * * 0", recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Sunday}}},
		{"0 0 * * 3", recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Wednesday}}},
		{"0 0 5 * *", recur.MonthDateDelta{Nth: 1, Days: []int{5}}},
		{"0 0 1 1 *", recur.YearDelta{Nth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rep, err := FromCron(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, recur.Repetition{Delta: tt.want, End: recur.Never{}}, rep)
		})
	}

	for _, expr := range []string{"*/5 * * * *", "30 9 * * *", "0 0 29 * *", "0 0 1-5 * *", "0 0 * * 1-5"} {
		_, err := FromCron(expr)
		assert.ErrorIs(t, err, ErrNotExpressible, expr)
	}

	_, err := FromCron("not a cron line")
	assert.Error(t, err)
}

func TestNextCron(t *testing.T) {
	next, err := NextCron("0 0 29 2 *", date(2021, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), next)

	_, err = NextCron("0 0 99 * *", date(2021, 3, 1))
	assert.Error(t, err)
}
