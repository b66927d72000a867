package ledger

import (
	"iter"
	"slices"

	"spendcal/internal/calendar"
	"spendcal/internal/model"
)

// CountOverlapDays returns how many days the ranges
// [periodStart, periodEnd) and [start, end) share.
func CountOverlapDays(periodStart, periodEnd, start, end calendar.Date) int {
	lo := periodStart
	if start.After(lo) {
		lo = start
	}
	hi := periodEnd
	if end.Before(hi) {
		hi = end
	}
	return max(calendar.DaysBetween(lo, hi), 0)
}

// CalculateSpread returns the amount, in whole currency units, that the
// expenses contribute to [start, start+period). Each occurrence is
// spread evenly over the expense's spread duration, one day when unset,
// and only the days inside the window are counted.
func CalculateSpread(expenses []model.Expense, start calendar.Date, period calendar.Duration) float64 {
	end := start.Add(period)

	var sum float64
	for _, e := range expenses {
		spread := calendar.Days(1)
		if e.Spread != nil {
			spread = *e.Spread
		}

		for d := range occurrences(e) {
			if !d.Before(end) {
				break
			}
			spreadEnd := d.Add(spread)
			days := calendar.DaysBetween(d, spreadEnd)
			if days < 1 {
				spreadEnd, days = d.AddDays(1), 1
			}
			perDay := float64(e.Amount) / float64(days)
			sum += perDay * float64(CountOverlapDays(start, end, d, spreadEnd))
		}
	}
	return sum / 100
}

// Agenda lists every occurrence of the expenses that lands within
// [from, to], ordered by date.
func Agenda(expenses []model.Expense, from, to calendar.Date) []model.Occurrence {
	var out []model.Occurrence
	for _, e := range expenses {
		for d := range occurrences(e) {
			if d.After(to) {
				break
			}
			if d.Before(from) {
				continue
			}
			out = append(out, model.Occurrence{
				ExpenseID:   e.ID,
				Description: e.Description,
				Amount:      e.Amount,
				Date:        d,
			})
		}
	}
	slices.SortFunc(out, model.CompareOccurrences)
	return out
}

func occurrences(e model.Expense) iter.Seq[calendar.Date] {
	if e.Repetition == nil {
		return func(yield func(calendar.Date) bool) { yield(e.Start) }
	}
	return e.Repetition.Occurrences(e.Start)
}
