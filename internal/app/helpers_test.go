package app

import (
	"context"
	"testing"
	"time"

	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"
	"catering_attendance_service/internal/infra/database/memory"

	"github.com/sirupsen/logrus"
)

// fixedClock pins "now" so cutoff checks are deterministic.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store        *memory.Store
	clock        *fixedClock
	caterings    *CateringService
	membership   *MembershipService
	cancellation *CancellationService
	attendance   *AttendanceService
	messages     *MessageService
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clock := &fixedClock{now: now}

	cancellation := NewCancellationService(store.Caterings(), store.Groups(), store.Attendance(), clock)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &testEnv{
		store:        store,
		clock:        clock,
		caterings:    NewCateringService(store.Caterings(), store.Groups(), clock),
		membership:   NewMembershipService(store.Groups(), clock),
		cancellation: cancellation,
		attendance:   NewAttendanceService(store.Caterings(), store.Snapshots()),
		messages: NewMessageService(
			store.Messages(), store.Groups(), store.Caterings(), cancellation,
			logrus.NewEntry(logger),
		),
	}
}

// weekdayCatering creates a Mon-Fri catering spanning 2025 with an 08:30
// cutoff, the standard fixture across these tests.
func (e *testEnv) weekdayCatering(t *testing.T) *catering.Catering {
	t.Helper()
	c, err := e.caterings.CreateCatering(context.Background(), catering.Input{
		Name:  "Przedszkole Słoneczko",
		Start: "2025-01-01",
		End:   "2025-11-11",
		Meals: []string{"Śniadanie", "Obiad", "Podwieczorek", "Kolacja"},
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Cutoff: "08:30",
	})
	if err != nil {
		t.Fatalf("create catering: %v", err)
	}
	return c
}

// otherCateringInput is a second, unrelated catering used by cross-catering
// tests.
func otherCateringInput() catering.Input {
	return catering.Input{
		Name:     "Żłobek Tęcza",
		Start:    "2025-01-01",
		End:      "2025-11-11",
		Meals:    []string{"Obiad"},
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		Cutoff:   "09:00",
	}
}

func (e *testEnv) enrollStudent(t *testing.T, c *catering.Catering, first, last string, guardians ...string) *group.Student {
	t.Helper()
	st, err := e.membership.AddStudent(context.Background(), c.RootGroupID, first, last, nil, guardians)
	if err != nil {
		t.Fatalf("add student: %v", err)
	}
	return st
}
