package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"
	idb "catering_attendance_service/internal/infra/database"

	"github.com/google/uuid"
)

var storeNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func seedCatering(t *testing.T, s *Store) *catering.Catering {
	t.Helper()
	c, err := catering.New(catering.Input{
		Name:  "Przedszkole Słoneczko",
		Start: "2025-01-01",
		End:   "2025-11-11",
		Meals: []string{"Śniadanie", "Obiad"},
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Cutoff: "08:30",
	}, storeNow)
	if err != nil {
		t.Fatalf("build catering: %v", err)
	}
	c.ID = uuid.New()
	root := group.NewRoot(c.ID, c.Name, storeNow)
	c.RootGroupID = root.ID
	if err := s.Caterings().CreateWithRoot(context.Background(), c, root); err != nil {
		t.Fatalf("create with root: %v", err)
	}
	return c
}

func seedStudent(t *testing.T, s *Store, c *catering.Catering, first, last string) *group.Student {
	t.Helper()
	root, err := s.Groups().GetGroup(context.Background(), c.RootGroupID)
	if err != nil {
		t.Fatalf("get root group: %v", err)
	}
	st, err := group.NewStudent(root, first, last, nil, nil, storeNow)
	if err != nil {
		t.Fatalf("build student: %v", err)
	}
	if err := s.Groups().CreateStudent(context.Background(), st); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

func TestConcurrentUpsertsDistinctKeys(t *testing.T) {
	s := NewStore()
	c := seedCatering(t, s)
	ctx := context.Background()

	const writers = 32
	students := make([]*group.Student, writers)
	for i := range students {
		students[i] = seedStudent(t, s, c, fmt.Sprintf("Imię%d", i), "Nowak")
	}
	date, _ := catering.ParseDate("2025-10-15")

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(st *group.Student) {
			defer wg.Done()
			_ = s.Attendance().Upsert(ctx, &attendance.CancellationRecord{
				StudentID:  st.ID,
				CateringID: c.ID,
				Date:       date,
				Cancelled:  true,
				RecordedAt: storeNow,
			})
		}(students[i])
	}
	wg.Wait()

	records, err := s.Attendance().ListByCateringRange(ctx, c.ID, date, date)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != writers {
		t.Fatalf("expected %d records, got %d", writers, len(records))
	}
}

func TestUpsertSameKeyLastWriteWins(t *testing.T) {
	s := NewStore()
	c := seedCatering(t, s)
	st := seedStudent(t, s, c, "Kamil", "Nowak")
	ctx := context.Background()
	date, _ := catering.ParseDate("2025-10-15")

	key := attendance.Key{StudentID: st.ID, CateringID: c.ID, Date: date}
	for _, cancelled := range []bool{true, false, true} {
		err := s.Attendance().Upsert(ctx, &attendance.CancellationRecord{
			StudentID:  st.ID,
			CateringID: c.ID,
			Date:       date,
			Cancelled:  cancelled,
			RecordedAt: storeNow,
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	rec, err := s.Attendance().Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.Cancelled {
		t.Fatal("expected the final upsert's value")
	}

	records, err := s.Attendance().ListByCateringRange(ctx, c.ID, date, date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("same key must hold one record, got %d", len(records))
	}
}

func TestGetMissingRecordIsNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Attendance().Get(context.Background(), attendance.Key{
		StudentID:  uuid.New(),
		CateringID: uuid.New(),
		Date:       storeNow,
	})
	if !errors.Is(err, idb.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestReadsReturnIsolatedCopies(t *testing.T) {
	s := NewStore()
	c := seedCatering(t, s)
	ctx := context.Background()

	got, err := s.Caterings().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get catering: %v", err)
	}
	got.Name = "Zmieniona"
	got.Meals[0] = "Zmieniony posiłek"
	got.Cutoff.Hour = 23

	again, err := s.Caterings().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get catering again: %v", err)
	}
	if again.Name != c.Name || again.Meals[0] != "Śniadanie" || again.Cutoff.Hour != 8 {
		t.Fatal("mutating a read result leaked into the store")
	}
}

func TestMonthSnapshotIsConsistent(t *testing.T) {
	s := NewStore()
	c := seedCatering(t, s)
	st := seedStudent(t, s, c, "Kamil", "Nowak")
	ctx := context.Background()

	from, _ := catering.ParseDate("2025-10-01")
	to, _ := catering.ParseDate("2025-10-31")
	inRange, _ := catering.ParseDate("2025-10-15")
	outOfRange, _ := catering.ParseDate("2025-11-03")

	for _, d := range []time.Time{inRange, outOfRange} {
		err := s.Attendance().Upsert(ctx, &attendance.CancellationRecord{
			StudentID:  st.ID,
			CateringID: c.ID,
			Date:       d,
			Cancelled:  true,
			RecordedAt: storeNow,
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	snap, err := s.Snapshots().MonthSnapshot(ctx, c.ID, from, to)
	if err != nil {
		t.Fatalf("month snapshot: %v", err)
	}
	if len(snap.Students) != 1 {
		t.Fatalf("expected 1 enrolled student, got %d", len(snap.Students))
	}
	if len(snap.Records) != 1 || !snap.Records[0].Date.Equal(inRange) {
		t.Fatalf("expected only the in-range record, got %+v", snap.Records)
	}
}
