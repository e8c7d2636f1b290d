package catering

import (
	"strings"
	"time"
)

// WeekdaySet is a bit set over Mon..Sun. Bit 0 is Monday regardless of
// locale or time.Weekday's Sunday-first numbering, so membership checks
// are independent of any week-start convention.
type WeekdaySet uint8

func bitFor(d time.Weekday) WeekdaySet {
	// time.Sunday == 0; shift so Monday lands on bit 0.
	return 1 << ((int(d) + 6) % 7)
}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= bitFor(d)
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&bitFor(d) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | bitFor(d)
}

// Weekdays returns the members in Monday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var out []time.Weekday
	for _, d := range order {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) String() string {
	days := s.Weekdays()
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}
