package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"
	"gopkg.in/yaml.v3"

	"spendcal/internal/calendar"
	"spendcal/internal/convert"
	appLog "spendcal/internal/log"
	"spendcal/internal/model"
	"spendcal/internal/recur"
)

// Extension properties carrying ledger data that plain iCalendar cannot.
const (
	propID         = ical.ComponentProperty("X-SPENDCAL-ID")
	propAmount     = ical.ComponentProperty("X-SPENDCAL-AMOUNT")
	propStart      = ical.ComponentProperty("X-SPENDCAL-START")
	propSpread     = ical.ComponentProperty("X-SPENDCAL-SPREAD")
	propRepetition = ical.ComponentProperty("X-SPENDCAL-REPETITION")
)

// Event is the normalized form of an all-day VEVENT.
type Event struct {
	UID     string
	Summary string

	// Start is DTSTART. End is the exclusive DTEND, if present.
	Start calendar.Date
	End   *calendar.Date

	RawRRule string
	RDates   []calendar.Date
	ExDates  []calendar.Date

	// Ledger extensions; zero when the event came from another tool.
	ExpenseID  uint64
	Amount     *int64
	Anchor     *calendar.Date
	Spread     *calendar.Duration
	Repetition *recur.Repetition
	Tags       []string
}

// ParseICS parses an ICS payload into events. VEVENTs that cannot be read
// are logged and skipped.
func ParseICS(body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]Event, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "uid", comp.Id())
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := parseICSDate(startProp.Value)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start

	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, err := parseICSDate(p.Value)
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.End = &end
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}
	if out.RDates, err = dateList(ve.GetProperties(ical.ComponentPropertyRdate)); err != nil {
		return out, fmt.Errorf("RDATE: %w", err)
	}
	if out.ExDates, err = dateList(ve.GetProperties(ical.ComponentPropertyExdate)); err != nil {
		return out, fmt.Errorf("EXDATE: %w", err)
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, tag := range strings.Split(p.Value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				out.Tags = append(out.Tags, tag)
			}
		}
	}

	if err := parseExtensions(ve, &out); err != nil {
		return out, err
	}
	return out, nil
}

func parseExtensions(ve *ical.VEvent, out *Event) error {
	if p := ve.GetProperty(propID); p != nil {
		id, err := strconv.ParseUint(strings.TrimSpace(p.Value), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", propID, err)
		}
		out.ExpenseID = id
	}
	if p := ve.GetProperty(propAmount); p != nil {
		amount, err := strconv.ParseInt(strings.TrimSpace(p.Value), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", propAmount, err)
		}
		out.Amount = &amount
	}
	if p := ve.GetProperty(propStart); p != nil {
		anchor, err := calendar.Parse(strings.TrimSpace(p.Value))
		if err != nil {
			return fmt.Errorf("%s: %w", propStart, err)
		}
		out.Anchor = &anchor
	}
	if p := ve.GetProperty(propSpread); p != nil {
		spread, err := calendar.ParseDuration(p.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", propSpread, err)
		}
		out.Spread = &spread
	}
	if p := ve.GetProperty(propRepetition); p != nil {
		var rep recur.Repetition
		if err := yaml.Unmarshal([]byte(p.Value), &rep); err != nil {
			return fmt.Errorf("%s: %w", propRepetition, err)
		}
		out.Repetition = &rep
	}
	return nil
}

// Expense turns the event into an unsaved ledger expense. Events written by
// Export carry the exact schedule; others are mapped from their RRULE, in
// which DTSTART is the first instance.
func (ev Event) Expense() (model.Expense, error) {
	if ev.Amount == nil {
		return model.Expense{}, fmt.Errorf("event %s has no amount", ev.UID)
	}

	start := ev.Start
	if ev.Anchor != nil {
		start = *ev.Anchor
	}

	spread := ev.Spread
	if spread == nil && ev.End != nil {
		if n := calendar.DaysBetween(ev.Start, *ev.End); n > 1 {
			d := calendar.Days(n)
			spread = &d
		}
	}

	rep := ev.Repetition
	if rep == nil && ev.RawRRule != "" {
		r, err := convert.FromRRule(ev.RawRRule, ev.Start)
		if err != nil {
			return model.Expense{}, fmt.Errorf("event %s: %w", ev.UID, err)
		}
		if c, ok := r.End.(recur.Count); ok {
			r.End = recur.Count{N: c.N - 1}
		}
		rep = &r
	}

	return model.NewExpense(ev.ExpenseID, ev.Summary, *ev.Amount, start, spread, rep, ev.Tags), nil
}

func dateList(props []*ical.IANAProperty) ([]calendar.Date, error) {
	var out []calendar.Date
	for _, p := range props {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := parseICSDate(part)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// parseICSDate reads the day of a DATE or DATE-TIME value. Times of day
// and zones are ignored; the ledger only tracks days.
func parseICSDate(v string) (calendar.Date, error) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return calendar.Date{}, fmt.Errorf("bad date value %q", v)
	}
	y, err1 := strconv.Atoi(v[0:4])
	m, err2 := strconv.Atoi(v[4:6])
	d, err3 := strconv.Atoi(v[6:8])
	if err := errors.Join(err1, err2, err3); err != nil {
		return calendar.Date{}, fmt.Errorf("bad date value %q: %w", v, err)
	}
	return calendar.New(y, m, d)
}
