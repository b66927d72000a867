package recur

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"spendcal/internal/calendar"
)

// deltaDoc is the stored form of a Delta. Unit selects the variant; a
// month schedule with an ordinal is an on-weekday schedule.
type deltaDoc struct {
	Unit    string             `yaml:"unit"`
	Every   int                `yaml:"every"`
	On      []calendar.Weekday `yaml:"on,omitempty"`
	Days    []int              `yaml:"days,omitempty"`
	Ordinal int                `yaml:"ordinal,omitempty"`
	Weekday *calendar.Weekday  `yaml:"weekday,omitempty"`
}

type repetitionDoc struct {
	Delta deltaDoc       `yaml:"delta"`
	Until *calendar.Date `yaml:"until,omitempty"`
	Count *int           `yaml:"count,omitempty"`
}

func (r Repetition) MarshalYAML() (any, error) {
	var doc repetitionDoc
	switch d := r.Delta.(type) {
	case DayDelta:
		doc.Delta = deltaDoc{Unit: "day", Every: d.Nth}
	case WeekDelta:
		doc.Delta = deltaDoc{Unit: "week", Every: d.Nth, On: d.On}
	case MonthDateDelta:
		doc.Delta = deltaDoc{Unit: "month", Every: d.Nth, Days: d.Days}
	case MonthWeekDelta:
		wd := d.Weekday
		doc.Delta = deltaDoc{Unit: "month", Every: d.Nth, Ordinal: d.Ordinal, Weekday: &wd}
	case YearDelta:
		doc.Delta = deltaDoc{Unit: "year", Every: d.Nth}
	default:
		return nil, fmt.Errorf("recur: cannot encode delta %T", r.Delta)
	}

	switch e := r.End.(type) {
	case Until:
		until := e.Date
		doc.Until = &until
	case Count:
		n := e.N
		doc.Count = &n
	}
	return doc, nil
}

func (r *Repetition) UnmarshalYAML(value *yaml.Node) error {
	var doc repetitionDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Until != nil && doc.Count != nil {
		return errors.New("recur: repetition has both until and count")
	}
	if doc.Delta.Every < 1 {
		return fmt.Errorf("recur: interval %d must be at least 1", doc.Delta.Every)
	}

	switch doc.Delta.Unit {
	case "day":
		r.Delta = DayDelta{Nth: doc.Delta.Every}
	case "week":
		if len(doc.Delta.On) == 0 {
			return errors.New("recur: weekly repetition without weekdays")
		}
		r.Delta = WeekDelta{Nth: doc.Delta.Every, On: doc.Delta.On}
	case "month":
		switch {
		case doc.Delta.Ordinal > 0 && doc.Delta.Weekday != nil:
			r.Delta = MonthWeekDelta{Nth: doc.Delta.Every, Ordinal: doc.Delta.Ordinal, Weekday: *doc.Delta.Weekday}
		case len(doc.Delta.Days) > 0:
			r.Delta = MonthDateDelta{Nth: doc.Delta.Every, Days: doc.Delta.Days}
		default:
			return errors.New("recur: monthly repetition needs days or ordinal and weekday")
		}
	case "year":
		r.Delta = YearDelta{Nth: doc.Delta.Every}
	default:
		return fmt.Errorf("recur: unknown unit %q", doc.Delta.Unit)
	}

	switch {
	case doc.Until != nil:
		r.End = Until{Date: *doc.Until}
	case doc.Count != nil:
		r.End = Count{N: *doc.Count}
	default:
		r.End = Never{}
	}
	return nil
}
