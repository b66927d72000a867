package ics

import (
	"errors"
	"slices"

	"github.com/teambition/rrule-go"

	"spendcal/internal/calendar"
	"spendcal/internal/convert"
	appLog "spendcal/internal/log"
	"spendcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// From / To define the inclusive window for occurrences.
	From calendar.Date
	To   calendar.Date

	// MaxOccurrencesPerEvent is a safety cap. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences and the UIDs that hit the
// cap.
type ExpandResult struct {
	Occurrences     []model.Occurrence
	TruncatedEvents []string
}

// ExpandOccurrences lists the days on which events occur within the
// window, applying RRULE, RDATE and EXDATE the way calendar clients do.
// Occurrences are ordered by date.
func ExpandOccurrences(events []Event, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.To.Before(cfg.From) {
		return result, errors.New("expand: To is before From")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	for _, ev := range events {
		days, err := expandEvent(ev, cfg)
		if err != nil {
			appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
			continue
		}
		if len(days) > cfg.MaxOccurrencesPerEvent {
			days = days[:cfg.MaxOccurrencesPerEvent]
			result.TruncatedEvents = append(result.TruncatedEvents, ev.UID)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}

		var amount int64
		if ev.Amount != nil {
			amount = *ev.Amount
		}
		for _, d := range days {
			result.Occurrences = append(result.Occurrences, model.Occurrence{
				ExpenseID:   ev.ExpenseID,
				Description: ev.Summary,
				Amount:      amount,
				Date:        d,
			})
		}
	}

	slices.SortFunc(result.Occurrences, model.CompareOccurrences)
	return result, nil
}

func expandEvent(ev Event, cfg ExpandConfig) ([]calendar.Date, error) {
	var set rrule.Set

	if ev.RawRRule == "" {
		set.RDate(convert.Time(ev.Start))
	} else {
		r, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			return nil, err
		}
		r.DTStart(convert.Time(ev.Start))
		set.RRule(r)
	}
	for _, d := range ev.RDates {
		set.RDate(convert.Time(d))
	}
	for _, d := range ev.ExDates {
		set.ExDate(convert.Time(d))
	}

	var out []calendar.Date
	for _, t := range set.Between(convert.Time(cfg.From), convert.Time(cfg.To), true) {
		out = append(out, convert.DateOf(t))
	}
	return out, nil
}
