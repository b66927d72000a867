package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		from Date
		dur  Duration
		want Date
	}{
		{"zero days", MustNew(2020, 1, 31), Days(0), MustNew(2020, 1, 31)},
		{"days within month", MustNew(2020, 9, 20), Days(5), MustNew(2020, 9, 25)},
		{"days across month", MustNew(2020, 1, 30), Days(3), MustNew(2020, 2, 2)},
		{"days across leap feb", MustNew(2020, 2, 28), Days(2), MustNew(2020, 3, 1)},
		{"days across year", MustNew(2019, 12, 31), Days(1), MustNew(2020, 1, 1)},
		{"many days", MustNew(2020, 1, 1), Days(366), MustNew(2021, 1, 1)},
		{"weeks", MustNew(2020, 12, 25), Weeks(2), MustNew(2021, 1, 8)},
		{"month clamps", MustNew(2020, 1, 31), Months(1), MustNew(2020, 2, 29)},
		{"month clamps common year", MustNew(2019, 1, 31), Months(1), MustNew(2019, 2, 28)},
		{"month into december", MustNew(2020, 11, 15), Months(1), MustNew(2020, 12, 15)},
		{"month to december next year", MustNew(2020, 12, 15), Months(12), MustNew(2021, 12, 15)},
		{"month across year", MustNew(2020, 11, 30), Months(3), MustNew(2021, 2, 28)},
		{"many months", MustNew(2020, 5, 10), Months(27), MustNew(2022, 8, 10)},
		{"year keeps day", MustNew(2020, 3, 1), Years(3), MustNew(2023, 3, 1)},
		{"year clamps leap day", MustNew(2020, 2, 29), Years(1), MustNew(2021, 2, 28)},
		{"year onto leap day", MustNew(2020, 2, 29), Years(4), MustNew(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Add(tt.dur))
		})
	}
}

func TestSub(t *testing.T) {
	tests := []struct {
		name string
		from Date
		dur  Duration
		want Date
	}{
		{"days within month", MustNew(2020, 9, 25), Days(5), MustNew(2020, 9, 20)},
		{"borrow month", MustNew(2020, 3, 1), Days(1), MustNew(2020, 2, 29)},
		{"borrow year", MustNew(2020, 1, 1), Days(1), MustNew(2019, 12, 31)},
		{"weeks", MustNew(2021, 1, 8), Weeks(2), MustNew(2020, 12, 25)},
		{"month clamps", MustNew(2020, 3, 31), Months(1), MustNew(2020, 2, 29)},
		{"month across year", MustNew(2020, 1, 15), Months(1), MustNew(2019, 12, 15)},
		{"twelve months", MustNew(2020, 12, 15), Months(12), MustNew(2019, 12, 15)},
		{"year clamps", MustNew(2020, 2, 29), Years(1), MustNew(2019, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Sub(tt.dur))
		})
	}
}

// stepAdd and stepSub walk one day at a time with explicit month carry and
// borrow. The closed-form arithmetic must agree with them.
func stepAdd(d Date, n int) Date {
	for range n {
		d.Day++
		if d.Day > DaysInMonth(d.Year, d.Month) {
			d.Day = 1
			d.Month++
			if d.Month > 12 {
				d.Month = 1
				d.Year++
			}
		}
	}
	return d
}

func stepSub(d Date, n int) Date {
	for range n {
		d.Day--
		if d.Day == 0 {
			d.Month--
			if d.Month == 0 {
				d.Year--
				d.Month = 12
			}
			d.Day = DaysInMonth(d.Year, d.Month)
		}
	}
	return d
}

func TestDayArithmeticMatchesStepping(t *testing.T) {
	anchors := []Date{
		MustNew(1899, 12, 30),
		MustNew(1900, 2, 27),
		MustNew(1999, 12, 31),
		MustNew(2000, 2, 28),
		MustNew(2020, 9, 20),
		MustNew(2100, 2, 28),
	}
	for _, a := range anchors {
		for n := 0; n <= 800; n += 7 {
			assert.Equal(t, stepAdd(a, n), a.Add(Days(n)), "%s + %d days", a, n)
			assert.Equal(t, stepSub(a, n), a.Sub(Days(n)), "%s - %d days", a, n)
		}
	}
}

func TestMonotonic(t *testing.T) {
	d := MustNew(2020, 9, 20)
	for _, n := range []int{1, 10, 31, 365, 10000} {
		assert.True(t, d.Add(Days(n)).After(d), "+%d", n)
		assert.True(t, d.Sub(Days(n)).Before(d), "-%d", n)
	}
}

func TestYearClampProperty(t *testing.T) {
	for year := 1996; year <= 2004; year++ {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= DaysInMonth(year, month); day++ {
				d := MustNew(year, month, day)
				for n := 0; n <= 4; n++ {
					got := d.Add(Years(n))
					assert.LessOrEqual(t, got.Day, DaysInMonth(got.Year, d.Month))
					if day <= DaysInMonth(got.Year, month) {
						assert.Equal(t, day, got.Day)
					}
				}
			}
		}
	}
}

func TestDayNumberRoundTrip(t *testing.T) {
	assert.Equal(t, 0, MustNew(1970, 1, 1).DayNumber())
	assert.Equal(t, MustNew(1970, 1, 1), FromDayNumber(0))
	assert.Equal(t, MustNew(1969, 12, 31), FromDayNumber(-1))

	for _, d := range []Date{
		MustNew(1, 1, 1), MustNew(1600, 2, 29), MustNew(1700, 3, 1),
		MustNew(2000, 2, 29), MustNew(2020, 9, 20), MustNew(9999, 12, 31),
	} {
		assert.Equal(t, d, FromDayNumber(d.DayNumber()))
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 366, DaysBetween(MustNew(2020, 1, 1), MustNew(2021, 1, 1)))
	assert.Equal(t, -1, DaysBetween(MustNew(2020, 3, 1), MustNew(2020, 2, 29)))
	assert.Equal(t, 0, DaysBetween(MustNew(2020, 3, 1), MustNew(2020, 3, 1)))
}

func TestParseDuration(t *testing.T) {
	tests := map[string]Duration{
		"1 day":    Days(1),
		"3 Weeks":  Weeks(3),
		"2 months": Months(2),
		"1 year":   Years(1),
		"10days":   Days(10),
	}
	for in, want := range tests {
		got, err := ParseDuration(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "fortnight", "3 hours", "-1 day", "day"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "1 day", Days(1).String())
	assert.Equal(t, "3 weeks", Weeks(3).String())
}
