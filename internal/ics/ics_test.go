package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendcal/internal/calendar"
	"spendcal/internal/config"
	"spendcal/internal/ledger"
	"spendcal/internal/model"
	"spendcal/internal/recur"
)

func ptr[T any](v T) *T { return &v }

func date(y, m, d int) calendar.Date { return calendar.MustNew(y, m, d) }

var stamp = time.Date(2020, 9, 20, 12, 0, 0, 0, time.UTC)

func sampleExpenses() []model.Expense {
	return []model.Expense{
		model.NewExpense(1, "rent", -100000, date(2020, 1, 1), nil,
			&recur.Repetition{Delta: recur.MonthDateDelta{Nth: 1, Days: []int{1}}, End: recur.Never{}},
			[]string{"rent"}),
		model.NewExpense(2, "gym, weekly", -2500, date(2020, 9, 20), ptr(calendar.Weeks(1)),
			&recur.Repetition{Delta: recur.WeekDelta{Nth: 1, On: []calendar.Weekday{calendar.Monday}}, End: recur.Count{N: 4}},
			[]string{"health", "fun"}),
		model.NewExpense(3, "course", -3000, date(2020, 11, 16), ptr(calendar.Days(30)), nil, nil),
		model.NewExpense(4, "fifth monday", -100, date(2020, 1, 1), nil,
			&recur.Repetition{
				Delta: recur.MonthWeekDelta{Nth: 1, Ordinal: 5, Weekday: calendar.Monday},
				End:   recur.Until{Date: date(2020, 12, 31)},
			}, nil),
	}
}

func TestExport(t *testing.T) {
	cfg := config.DefaultConfig().ICS
	out, err := Export(sampleExpenses(), cfg, stamp)
	require.NoError(t, err)

	assert.Contains(t, out, "PRODID:-//spendcal//EN")
	assert.Contains(t, out, "UID:expense-1@spendcal")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20200201")
	assert.Contains(t, out, "RRULE:FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=1")
	assert.Contains(t, out, "RDATE;VALUE=DATE:20200101")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=4;BYDAY=MO")
	assert.Contains(t, out, "X-SPENDCAL-AMOUNT:-100000")
	assert.Contains(t, out, "CATEGORIES:health")
	assert.Contains(t, out, `SUMMARY:gym\, weekly`)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20201116")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20201216")
}

func TestExportParseRoundTrip(t *testing.T) {
	expenses := sampleExpenses()
	out, err := Export(expenses, config.DefaultConfig().ICS, stamp)
	require.NoError(t, err)

	events, err := ParseICS([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, len(expenses))

	for i, ev := range events {
		got, err := ev.Expense()
		require.NoError(t, err)
		assert.Equal(t, expenses[i], got)
	}
}

// A calendar client expanding the export sees the same days as the ledger.
func TestExportExpandsLikeLedger(t *testing.T) {
	expenses := sampleExpenses()
	out, err := Export(expenses, config.DefaultConfig().ICS, stamp)
	require.NoError(t, err)
	events, err := ParseICS([]byte(out))
	require.NoError(t, err)

	from, to := date(2020, 1, 1), date(2020, 12, 31)
	res, err := ExpandOccurrences(events, ExpandConfig{From: from, To: to})
	require.NoError(t, err)
	assert.Empty(t, res.TruncatedEvents)
	assert.Equal(t, ledger.Agenda(expenses, from, to), res.Occurrences)
}

const foreign = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:netflix@example.com
DTSTAMP:20200101T000000Z
SUMMARY:Netflix
DTSTART;VALUE=DATE:20200915
DTEND;VALUE=DATE:20200916
RRULE:FREQ=MONTHLY;COUNT=3
EXDATE;VALUE=DATE:20201015
X-SPENDCAL-AMOUNT:-1299
CATEGORIES:fun,tv
END:VEVENT
BEGIN:VEVENT
UID:standup@example.com
SUMMARY:Standup
DTSTART:20200916T090000Z
RRULE:FREQ=WEEKLY;BYDAY=MO,WE
END:VEVENT
BEGIN:VEVENT
UID:broken@example.com
SUMMARY:No start
END:VEVENT
END:VCALENDAR
`

func TestParseForeignCalendar(t *testing.T) {
	events, err := ParseICS([]byte(foreign))
	require.NoError(t, err)
	require.Len(t, events, 2)

	netflix := events[0]
	assert.Equal(t, date(2020, 9, 15), netflix.Start)
	assert.Equal(t, []calendar.Date{date(2020, 10, 15)}, netflix.ExDates)
	assert.Equal(t, []string{"fun", "tv"}, netflix.Tags)

	e, err := netflix.Expense()
	require.NoError(t, err)
	assert.Equal(t, int64(-1299), e.Amount)
	assert.Nil(t, e.Spread)
	assert.Equal(t, &recur.Repetition{
		Delta: recur.MonthDateDelta{Nth: 1, Days: []int{15}},
		End:   recur.Count{N: 2},
	}, e.Repetition)
	require.NotNil(t, e.End)
	assert.Equal(t, date(2020, 11, 15), *e.End)

	standup := events[1]
	assert.Equal(t, date(2020, 9, 16), standup.Start)
	_, err = standup.Expense()
	assert.Error(t, err)
}

func TestExpandForeignCalendar(t *testing.T) {
	events, err := ParseICS([]byte(foreign))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events[:1], ExpandConfig{From: date(2020, 9, 1), To: date(2020, 12, 31)})
	require.NoError(t, err)
	var days []calendar.Date
	for _, o := range res.Occurrences {
		assert.Equal(t, int64(-1299), o.Amount)
		days = append(days, o.Date)
	}
	assert.Equal(t, []calendar.Date{date(2020, 9, 15), date(2020, 11, 15)}, days)

	res, err = ExpandOccurrences(events[1:], ExpandConfig{From: date(2020, 9, 1), To: date(2020, 9, 30), MaxOccurrencesPerEvent: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"standup@example.com"}, res.TruncatedEvents)
	require.Len(t, res.Occurrences, 3)
	assert.Equal(t, date(2020, 9, 16), res.Occurrences[0].Date)
	assert.Equal(t, date(2020, 9, 21), res.Occurrences[1].Date)

	_, err = ExpandOccurrences(events, ExpandConfig{From: date(2020, 9, 2), To: date(2020, 9, 1)})
	assert.Error(t, err)
}

func TestParseICSErrors(t *testing.T) {
	_, err := ParseICS(nil)
	assert.Error(t, err)

	_, err = ParseICS([]byte("not a calendar"))
	assert.Error(t, err)
}

func TestParseICSDate(t *testing.T) {
	d, err := parseICSDate("20200229")
	require.NoError(t, err)
	assert.Equal(t, date(2020, 2, 29), d)

	d, err = parseICSDate("20201231T235959Z")
	require.NoError(t, err)
	assert.Equal(t, date(2020, 12, 31), d)

	for _, bad := range []string{"2020", "2021022x", "20210229"} {
		_, err := parseICSDate(bad)
		assert.Error(t, err, bad)
	}
}
