package ics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"gopkg.in/yaml.v3"

	"spendcal/internal/calendar"
	"spendcal/internal/config"
	"spendcal/internal/convert"
	appLog "spendcal/internal/log"
	"spendcal/internal/model"
)

// maxRDates caps the explicit dates written for schedules that have no
// RRULE form.
const maxRDates = 500

// Export renders expenses as an iCalendar document of all-day events. Each
// expense becomes one VEVENT lasting its spread (one day when unset).
//
// A repeating expense whose schedule maps to an RRULE is written with
// DTSTART on the first step, the rule, and an RDATE for the start date.
// Other schedules list their occurrences as RDATEs.
func Export(expenses []model.Expense, cfg config.ICSConfig, stamp time.Time) (string, error) {
	cal := ical.NewCalendarFor(cfg.Name)
	cal.SetProductId(cfg.ProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(cfg.Name)

	for _, e := range expenses {
		if err := addEvent(cal, e, cfg, stamp); err != nil {
			return "", fmt.Errorf("expense %d: %w", e.ID, err)
		}
	}

	appLog.Info("ics export completed", "event_count", len(expenses))
	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, e model.Expense, cfg config.ICSConfig, stamp time.Time) error {
	event := cal.AddEvent(fmt.Sprintf("expense-%d@%s", e.ID, cfg.Name))
	event.SetDtStampTime(stamp)
	event.SetSummary(e.Description)
	event.SetDescription(e.String())
	for _, tag := range e.Tags {
		event.AddCategory(tag)
	}

	event.SetProperty(propID, strconv.FormatUint(e.ID, 10))
	event.SetProperty(propAmount, strconv.FormatInt(e.Amount, 10))
	event.SetProperty(propStart, e.Start.String())
	length := calendar.Days(1)
	if e.Spread != nil {
		length = *e.Spread
		event.SetProperty(propSpread, e.Spread.String())
	}

	dtstart := e.Start
	if e.Repetition != nil {
		raw, err := yaml.Marshal(e.Repetition)
		if err != nil {
			return err
		}
		event.SetProperty(propRepetition, string(raw))

		if dtstart, err = addSchedule(event, e); err != nil {
			return err
		}
	}

	event.SetAllDayStartAt(convert.Time(dtstart))
	end := dtstart.Add(length)
	if !end.After(dtstart) {
		end = dtstart.AddDays(1)
	}
	event.SetAllDayEndAt(convert.Time(end))
	return nil
}

// addSchedule writes the recurrence properties and returns the DTSTART
// to use.
func addSchedule(event *ical.VEvent, e model.Expense) (calendar.Date, error) {
	rep := *e.Repetition
	if last, ok := rep.Last(e.Start); ok && !last.After(e.Start) {
		return e.Start, nil
	}

	opt, err := convert.ToROption(rep, e.Start)
	switch {
	case err == nil:
		first := convert.DateOf(opt.Dtstart)
		event.AddRrule(opt.RRuleString())
		if first != e.Start {
			event.AddRdate(icsDate(e.Start), ical.WithValue(string(ical.ValueDataTypeDate)))
		}
		return first, nil
	case errors.Is(err, convert.ErrNotExpressible):
		n := 0
		for d := range rep.Occurrences(e.Start) {
			if n == maxRDates {
				appLog.Error("ics export: truncated explicit dates", errors.New("max dates reached"),
					"id", e.ID, "cap", maxRDates)
				break
			}
			if n > 0 {
				event.AddRdate(icsDate(d), ical.WithValue(string(ical.ValueDataTypeDate)))
			}
			n++
		}
		return e.Start, nil
	default:
		return calendar.Date{}, err
	}
}

func icsDate(d calendar.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}
