package calendar

// Day numbers count days since 1970-01-01 in the proleptic Gregorian
// calendar. Conversions use era arithmetic (400-year cycles of 146097 days)
// with floored division so negative years work as well.

const (
	daysPerEra   = 146097
	epochShift   = 719468 // days from 0000-03-01 to 1970-01-01
	yearsPerEra  = 400
	monthsInYear = 12
)

// DayNumber returns the number of days between 1970-01-01 and d.
func (d Date) DayNumber() int {
	y := d.Year
	if d.Month <= 2 {
		y--
	}
	era := floorDiv(y, yearsPerEra)
	yoe := y - era*yearsPerEra
	m := d.Month
	if m > 2 {
		m -= 3
	} else {
		m += 9
	}
	doy := (153*m+2)/5 + d.Day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - epochShift
}

// FromDayNumber is the inverse of Date.DayNumber.
func FromDayNumber(n int) Date {
	z := n + epochShift
	era := floorDiv(z, daysPerEra)
	doe := z - era*daysPerEra
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*yearsPerEra
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if mp >= 10 {
		month = mp - 9
	}
	if month <= 2 {
		y++
	}
	return Date{Year: y, Month: month, Day: day}
}

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(a, b Date) int {
	return b.DayNumber() - a.DayNumber()
}

// Add offsets d by dur.
//
// Day and week offsets roll over month and year boundaries. Month and
// year offsets keep the day of month and clamp it to the length of the
// target month, so 2020-01-31 + 1 month is 2020-02-29.
func (d Date) Add(dur Duration) Date {
	switch dur.Unit {
	case Day:
		return d.addDays(dur.N)
	case Week:
		return d.addDays(dur.N * 7)
	case Month:
		return d.addMonths(dur.N)
	case Year:
		return d.addYears(dur.N)
	}
	return d
}

// Sub offsets d backwards by dur with the same rules as Add.
func (d Date) Sub(dur Duration) Date {
	return d.Add(Duration{Unit: dur.Unit, N: -dur.N})
}

// AddDays is shorthand for d.Add(Days(n)).
func (d Date) AddDays(n int) Date {
	return d.addDays(n)
}

func (d Date) addDays(n int) Date {
	if n == 0 {
		return d
	}
	return FromDayNumber(d.DayNumber() + n)
}

func (d Date) addMonths(n int) Date {
	total := d.Year*monthsInYear + d.Month - 1 + n
	year := floorDiv(total, monthsInYear)
	month := total - year*monthsInYear + 1
	return Date{Year: year, Month: month, Day: min(d.Day, DaysInMonth(year, month))}
}

func (d Date) addYears(n int) Date {
	year := d.Year + n
	return Date{Year: year, Month: d.Month, Day: min(d.Day, DaysInMonth(year, d.Month))}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
