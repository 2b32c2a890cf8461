// Package scheduling works with the clinic's "HH:MM-HH:MM" time slot labels.
package scheduling

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	clockLayout = "15:04"
	// DefaultStep is the length of a generated slot.
	DefaultStep = 30 * time.Minute
)

var (
	ErrInvalidSlot  = errors.New("time slot must look like HH:MM-HH:MM")
	ErrEmptyRange   = errors.New("slot must end after it starts")
	ErrInvalidStep  = errors.New("slot step must be at least one minute")
	slotPattern     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)
	defaultWorkDays = map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
)

// TimeRange is a start and end clock time within one day.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// String renders the range as a slot label.
func (r TimeRange) String() string {
	return r.Start.Format(clockLayout) + "-" + r.End.Format(clockLayout)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether r and o share any instant. Touching ranges such
// as 08:00-08:30 and 08:30-09:00 do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// ParseSlot parses a "HH:MM-HH:MM" label.
func ParseSlot(label string) (TimeRange, error) {
	if !slotPattern.MatchString(label) {
		return TimeRange{}, ErrInvalidSlot
	}
	start, _ := time.Parse(clockLayout, label[:5])
	end, _ := time.Parse(clockLayout, label[6:])
	if !end.After(start) {
		return TimeRange{}, ErrEmptyRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Generate cuts [from, to) into consecutive slots of step. A trailing piece
// shorter than step is dropped.
func Generate(from, to string, step time.Duration) ([]TimeRange, error) {
	if step < time.Minute {
		return nil, ErrInvalidStep
	}
	start, err := time.Parse(clockLayout, from)
	if err != nil {
		return nil, fmt.Errorf("parse start %q: %w", from, err)
	}
	end, err := time.Parse(clockLayout, to)
	if err != nil {
		return nil, fmt.Errorf("parse end %q: %w", to, err)
	}
	if !end.After(start) {
		return nil, ErrEmptyRange
	}

	var out []TimeRange
	for t := start; !t.Add(step).After(end); t = t.Add(step) {
		out = append(out, TimeRange{Start: t, End: t.Add(step)})
	}
	return out, nil
}

// IsWorkDay reports whether clinics schedule on date. Weekends are off.
func IsWorkDay(date time.Time) bool {
	return defaultWorkDays[date.Weekday()]
}
