package catering

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func validInput() Input {
	return Input{
		Name:  "Przedszkole Słoneczko",
		Start: "2025-01-01",
		End:   "2025-11-11",
		Meals: []string{"Śniadanie", "Obiad", "Podwieczorek", "Kolacja"},
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Cutoff: "08:30",
	}
}

func TestNewValidCatering(t *testing.T) {
	c, err := New(validInput(), testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}
	if c.Name != "Przedszkole Słoneczko" {
		t.Fatalf("unexpected name %q", c.Name)
	}
	if len(c.Meals) != 4 {
		t.Fatalf("expected 4 meals, got %d", len(c.Meals))
	}
	if c.Cutoff == nil || c.Cutoff.String() != "08:30" {
		t.Fatalf("expected cutoff 08:30, got %v", c.Cutoff)
	}
	if !c.CreatedAt.Equal(testNow) {
		t.Fatal("expected CreatedAt to match injected time")
	}
}

func TestNewValidationPriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		err    error
	}{
		{
			name:   "inverted range fails regardless of other fields",
			mutate: func(in *Input) { in.Start = "2025-11-11"; in.End = "2025-01-01" },
			err:    ErrInvalidDateRange,
		},
		{
			name:   "missing start date",
			mutate: func(in *Input) { in.Start = "" },
			err:    ErrInvalidDateRange,
		},
		{
			name:   "unparsable end date",
			mutate: func(in *Input) { in.End = "not-a-date" },
			err:    ErrInvalidDateRange,
		},
		{
			name: "date error wins over missing meals",
			mutate: func(in *Input) {
				in.Start = "2025-11-11"
				in.End = "2025-01-01"
				in.Meals = nil
			},
			err: ErrInvalidDateRange,
		},
		{
			name:   "empty meals with valid dates and weekdays",
			mutate: func(in *Input) { in.Meals = nil },
			err:    ErrMissingMeals,
		},
		{
			name:   "meals of blank strings count as empty",
			mutate: func(in *Input) { in.Meals = []string{"  ", ""} },
			err:    ErrMissingMeals,
		},
		{
			name: "meals error wins over missing weekdays",
			mutate: func(in *Input) {
				in.Meals = nil
				in.Weekdays = nil
			},
			err: ErrMissingMeals,
		},
		{
			name:   "no weekdays selected",
			mutate: func(in *Input) { in.Weekdays = nil },
			err:    ErrNoWeekdaysSelected,
		},
		{
			name:   "bad cutoff time",
			mutate: func(in *Input) { in.Cutoff = "25:99" },
			err:    ErrInvalidCutoffTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := New(in, testNow)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNewDeduplicatesMealsCaseInsensitively(t *testing.T) {
	in := validInput()
	in.Meals = []string{"Obiad", "obiad", "OBIAD", "Kolacja"}

	c, err := New(in, testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}
	if len(c.Meals) != 2 {
		t.Fatalf("expected 2 meals after dedupe, got %v", c.Meals)
	}
	// First spelling wins.
	if c.Meals[0] != "Obiad" {
		t.Fatalf("expected original spelling preserved, got %q", c.Meals[0])
	}
}

func TestIsActiveDay(t *testing.T) {
	c, err := New(validInput(), testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"weekday inside range", "2025-10-01", true}, // Wednesday
		{"monday inside range", "2025-10-06", true},
		{"saturday inside range", "2025-10-04", false},
		{"sunday inside range", "2025-10-05", false},
		{"day before range start", "2024-12-31", false},
		{"range start itself", "2025-01-01", true}, // Wednesday, inclusive boundary
		{"range end itself", "2025-11-11", true},   // Tuesday, inclusive boundary
		{"day after range end", "2025-11-12", false},
		{"far future", "2030-06-03", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			if err != nil {
				t.Fatalf("parse date: %v", err)
			}
			if got := c.IsActiveDay(d); got != tt.want {
				t.Fatalf("IsActiveDay(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsActiveDayArchived(t *testing.T) {
	c, err := New(validInput(), testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}
	d, _ := ParseDate("2025-10-01")
	if !c.IsActiveDay(d) {
		t.Fatal("expected active day before archival")
	}
	c.Archived = true
	if c.IsActiveDay(d) {
		t.Fatal("archived catering must have no active days")
	}
}

func TestCutoffInstant(t *testing.T) {
	c, err := New(validInput(), testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}
	d, _ := ParseDate("2025-10-06")
	instant, ok := c.CutoffInstant(d)
	if !ok {
		t.Fatal("expected a configured cutoff")
	}
	want := time.Date(2025, 10, 6, 8, 30, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("cutoff instant = %v, want %v", instant, want)
	}

	c.Cutoff = nil
	if _, ok := c.CutoffInstant(d); ok {
		t.Fatal("expected no cutoff instant without a configured cutoff")
	}
}

func TestWeekdaySetCanonicalBits(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Sunday)
	if !s.Contains(time.Monday) || !s.Contains(time.Sunday) {
		t.Fatal("expected monday and sunday to be members")
	}
	if s.Contains(time.Wednesday) {
		t.Fatal("wednesday must not be a member")
	}
	// Monday-first canonical order.
	days := s.Weekdays()
	if len(days) != 2 || days[0] != time.Monday || days[1] != time.Sunday {
		t.Fatalf("unexpected canonical order: %v", days)
	}
	if NewWeekdaySet().IsEmpty() != true {
		t.Fatal("empty set must report empty")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:05")
	if err != nil {
		t.Fatalf("parse time of day: %v", err)
	}
	if tod.Hour != 8 || tod.Minute != 5 {
		t.Fatalf("unexpected time %v", tod)
	}
	for _, bad := range []string{"24:00", "12:60", "nope", "-1:30", "08:30xyz", "8:05", "8:5"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestApplyRevalidates(t *testing.T) {
	c, err := New(validInput(), testNow)
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}

	bad := validInput()
	bad.Meals = nil
	if err := c.Apply(bad, testNow); !errors.Is(err, ErrMissingMeals) {
		t.Fatalf("expected ErrMissingMeals, got %v", err)
	}
	// Failed update leaves the entity untouched.
	if len(c.Meals) != 4 {
		t.Fatalf("meals mutated by failed update: %v", c.Meals)
	}

	good := validInput()
	good.Cutoff = ""
	if err := c.Apply(good, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("apply valid update: %v", err)
	}
	if c.Cutoff != nil {
		t.Fatal("expected cutoff cleared by update")
	}
}
