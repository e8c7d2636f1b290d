// internal/domain/catering/catering.go
package catering

import (
	"strings"
	"time"

	"catering_attendance_service/internal/domain/domainerr"

	"github.com/google/uuid"
)

// Validation failures, highest priority first. All checks run on every
// create/update; the first failing one in this order is returned.
var (
	ErrInvalidDateRange   = domainerr.New(domainerr.KindInvalidDateRange, "catering date range is missing, unparsable or inverted")
	ErrMissingMeals       = domainerr.New(domainerr.KindMissingMeals, "catering requires at least one meal")
	ErrNoWeekdaysSelected = domainerr.New(domainerr.KindNoWeekdaysSelected, "catering requires at least one active weekday")
	ErrInvalidCutoffTime  = domainerr.New(domainerr.KindInvalidCutoffTime, "cancellation cutoff is not a valid HH:MM time")
)

const dateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date (YYYY-MM-DD) into a normalized
// midnight-UTC instant.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// DateOf truncates an instant to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Catering is a recurring meal-service schedule: a closed validity range,
// a weekday recurrence, an ordered meal list and an optional same-day
// cancellation cutoff.
type Catering struct {
	ID          uuid.UUID
	Name        string
	Start       time.Time // first service day, inclusive
	End         time.Time // last service day, inclusive
	Meals       []string  // ordered, unique case-insensitively
	Weekdays    WeekdaySet
	Cutoff      *TimeOfDay // nil: same-day cancellation disallowed
	RootGroupID uuid.UUID
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input carries the wire-level fields of a create or update request.
// Dates are YYYY-MM-DD, the cutoff is HH:MM or empty for none.
type Input struct {
	Name     string
	Start    string
	End      string
	Meals    []string
	Weekdays []time.Weekday
	Cutoff   string
}

// New validates in and builds a Catering. Identity and the root group are
// assigned by the caller on persist.
func New(in Input, now time.Time) (*Catering, error) {
	c := &Catering{
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.apply(in, now); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply revalidates in against the same rules as New and mutates c on
// success only. Identity, root group and archival state are untouched.
func (c *Catering) Apply(in Input, now time.Time) error {
	return c.apply(in, now)
}

func (c *Catering) apply(in Input, now time.Time) error {
	// Run every check, then report the highest-priority failure so the
	// outcome does not depend on field evaluation order.
	start, end, rangeErr := parseRange(in.Start, in.End)
	meals, mealsErr := normalizeMeals(in.Meals)
	weekdays := NewWeekdaySet(in.Weekdays...)
	cutoff, cutoffErr := parseCutoff(in.Cutoff)

	switch {
	case rangeErr != nil:
		return rangeErr
	case mealsErr != nil:
		return mealsErr
	case weekdays.IsEmpty():
		return ErrNoWeekdaysSelected
	case cutoffErr != nil:
		return cutoffErr
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Start = start
	c.End = end
	c.Meals = meals
	c.Weekdays = weekdays
	c.Cutoff = cutoff
	c.UpdatedAt = now
	return nil
}

func parseRange(startStr, endStr string) (start, end time.Time, err error) {
	if startStr == "" || endStr == "" {
		return start, end, ErrInvalidDateRange
	}
	start, err = ParseDate(startStr)
	if err != nil {
		return start, end, ErrInvalidDateRange
	}
	end, err = ParseDate(endStr)
	if err != nil {
		return start, end, ErrInvalidDateRange
	}
	if start.After(end) {
		return start, end, ErrInvalidDateRange
	}
	return start, end, nil
}

// normalizeMeals trims entries and drops case-insensitive duplicates while
// preserving order and the spelling of the first occurrence.
func normalizeMeals(meals []string) ([]string, error) {
	seen := make(map[string]bool, len(meals))
	out := make([]string, 0, len(meals))
	for _, m := range meals {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, ErrMissingMeals
	}
	return out, nil
}

func parseCutoff(s string) (*TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return nil, ErrInvalidCutoffTime
	}
	return &t, nil
}

// IsActiveDay reports whether date is a service day: inside the closed
// [Start, End] range and on an active weekday. Total over all dates.
func (c *Catering) IsActiveDay(date time.Time) bool {
	if c.Archived {
		return false
	}
	d := DateOf(date)
	if d.Before(c.Start) || d.After(c.End) {
		return false
	}
	return c.Weekdays.Contains(d.Weekday())
}

// CutoffInstant returns the moment after which same-day cancellation for
// date is disallowed. ok is false when no cutoff is configured.
func (c *Catering) CutoffInstant(date time.Time) (time.Time, bool) {
	if c.Cutoff == nil {
		return time.Time{}, false
	}
	return c.Cutoff.On(DateOf(date)), true
}

// HasMeal reports whether name matches one of the catering's meals,
// compared case-insensitively.
func (c *Catering) HasMeal(name string) bool {
	for _, m := range c.Meals {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}
