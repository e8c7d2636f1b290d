package app

import (
	"context"
	"testing"
	"time"

	"catering_attendance_service/internal/domain/attendance"
)

// October 2025: active weekdays for a Mon-Fri catering are the 1st-3rd,
// 6th-10th, 13th-17th, 20th-24th and 27th-31st; 23 in total.
const octoberActiveDays = 23

func monthDay(view *attendance.MonthView, day int) attendance.DailyAttendance {
	return view.Days[day-1]
}

func TestGetMonthViewEmptyCatering(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)

	view, err := env.attendance.GetMonthView(ctx, c.ID, 2025, time.October)
	if err != nil {
		t.Fatalf("get month view: %v", err)
	}
	if len(view.Days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(view.Days))
	}

	active := 0
	for _, day := range view.Days {
		if day.Active {
			active++
		}
		if len(day.Counts) != 4 {
			t.Fatalf("expected a count for every meal, got %v", day.Counts)
		}
		for meal, count := range day.Counts {
			if count != 0 {
				t.Fatalf("day %v meal %s: expected 0 with no students, got %d", day.Date, meal, count)
			}
		}
	}
	if active != octoberActiveDays {
		t.Fatalf("expected %d active days, got %d", octoberActiveDays, active)
	}
}

func TestGetMonthViewSingleStudent(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)
	env.enrollStudent(t, c, "Kamil", "Nowak")

	view, err := env.attendance.GetMonthView(ctx, c.ID, 2025, time.October)
	if err != nil {
		t.Fatalf("get month view: %v", err)
	}

	for _, day := range view.Days {
		for meal, count := range day.Counts {
			want := 0
			if day.Active {
				want = 1
			}
			if count != want {
				t.Fatalf("day %v meal %s: count = %d, want %d", day.Date, meal, count, want)
			}
		}
	}
}

func TestGetMonthViewCancellationZeroesAllMealsOfDay(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)
	st := env.enrollStudent(t, c, "Kamil", "Nowak")
	env.enrollStudent(t, c, "Zosia", "Kowalska")

	// 2025-10-15 is a Wednesday; the clock is well before its cutoff.
	if err := env.cancellation.SetCancellation(ctx, st.ID, c.ID, "2025-10-15", true); err != nil {
		t.Fatalf("set cancellation: %v", err)
	}

	view, err := env.attendance.GetMonthView(ctx, c.ID, 2025, time.October)
	if err != nil {
		t.Fatalf("get month view: %v", err)
	}

	cancelledDay := monthDay(view, 15)
	for meal, count := range cancelledDay.Counts {
		if count != 1 {
			t.Fatalf("meal %s on cancelled day: count = %d, want 1", meal, count)
		}
	}
	// Neighbouring active day unaffected.
	for meal, count := range monthDay(view, 14).Counts {
		if count != 2 {
			t.Fatalf("meal %s on unaffected day: count = %d, want 2", meal, count)
		}
	}
}

func TestCancellationRoundTripRestoresCount(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)
	st := env.enrollStudent(t, c, "Kamil", "Nowak")

	if err := env.cancellation.SetCancellation(ctx, st.ID, c.ID, "2025-10-15", true); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := env.cancellation.SetCancellation(ctx, st.ID, c.ID, "2025-10-15", false); err != nil {
		t.Fatalf("un-cancel: %v", err)
	}

	view, err := env.attendance.GetMonthView(ctx, c.ID, 2025, time.October)
	if err != nil {
		t.Fatalf("get month view: %v", err)
	}
	for meal, count := range monthDay(view, 15).Counts {
		if count != 1 {
			t.Fatalf("meal %s after round trip: count = %d, want 1", meal, count)
		}
	}
}

func TestGetMonthViewOutsideRangeAllZero(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)
	env.enrollStudent(t, c, "Kamil", "Nowak")

	// December 2025 is entirely past the catering's end date.
	view, err := env.attendance.GetMonthView(ctx, c.ID, 2025, time.December)
	if err != nil {
		t.Fatalf("get month view: %v", err)
	}
	for _, day := range view.Days {
		if day.Active {
			t.Fatalf("day %v should be inactive outside the range", day.Date)
		}
		for meal, count := range day.Counts {
			if count != 0 {
				t.Fatalf("day %v meal %s: expected 0 outside range, got %d", day.Date, meal, count)
			}
		}
	}
}

func TestGetDayCounts(t *testing.T) {
	env := newTestEnv(t, serviceNow)
	ctx := context.Background()
	c := env.weekdayCatering(t)
	env.enrollStudent(t, c, "Kamil", "Nowak")

	day, _ := time.Parse("2006-01-02", "2025-10-15")
	got, err := env.attendance.GetDayCounts(ctx, c.ID, day)
	if err != nil {
		t.Fatalf("get day counts: %v", err)
	}
	if !got.Active {
		t.Fatal("expected an active day")
	}
	if got.Counts["Obiad"] != 1 {
		t.Fatalf("expected 1 for Obiad, got %d", got.Counts["Obiad"])
	}
}
