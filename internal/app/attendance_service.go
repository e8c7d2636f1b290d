package app

import (
	"context"
	"fmt"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"

	"github.com/google/uuid"
)

// AttendanceService is the read side: it derives per-day, per-meal expected
// headcounts from enrollment and the cancellation ledger.
type AttendanceService struct {
	cateringRepo catering.Repository
	snapshots    attendance.SnapshotReader
}

func NewAttendanceService(cr catering.Repository, sr attendance.SnapshotReader) *AttendanceService {
	return &AttendanceService{cateringRepo: cr, snapshots: sr}
}

// GetMonthView returns one DailyAttendance per calendar day of the month.
// Days outside the catering's range or recurrence report zero for every
// meal; active days report the enrolled headcount minus effective
// cancellations, identically for each meal.
func (s *AttendanceService) GetMonthView(ctx context.Context, cateringID uuid.UUID, year int, month time.Month) (*attendance.MonthView, error) {
	c, err := s.cateringRepo.GetByID(ctx, cateringID)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	snap, err := s.snapshots.MonthSnapshot(ctx, cateringID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to read month snapshot: %w", err)
	}

	cancelled := cancelledIndex(snap.Records)

	view := &attendance.MonthView{
		CateringID: cateringID,
		Year:       year,
		Month:      month,
		Meals:      c.Meals,
		Days:       make([]attendance.DailyAttendance, 0, last.Day()),
	}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		view.Days = append(view.Days, dailyAttendance(c, day, len(snap.Students), cancelled))
	}
	return view, nil
}

// GetDayCounts derives a single day's DailyAttendance.
func (s *AttendanceService) GetDayCounts(ctx context.Context, cateringID uuid.UUID, date time.Time) (*attendance.DailyAttendance, error) {
	c, err := s.cateringRepo.GetByID(ctx, cateringID)
	if err != nil {
		return nil, err
	}
	day := catering.DateOf(date)

	snap, err := s.snapshots.MonthSnapshot(ctx, cateringID, day, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read day snapshot: %w", err)
	}

	d := dailyAttendance(c, day, len(snap.Students), cancelledIndex(snap.Records))
	return &d, nil
}

// cancelledIndex maps service day to the number of students with an
// effective (true) cancellation on it.
func cancelledIndex(records []*attendance.CancellationRecord) map[time.Time]int {
	out := make(map[time.Time]int)
	for _, r := range records {
		if r.Cancelled {
			out[r.Date]++
		}
	}
	return out
}

// dailyAttendance reports the same expected count for every meal: the
// ledger tracks cancellation per day, not per meal-within-day.
func dailyAttendance(c *catering.Catering, day time.Time, enrolled int, cancelled map[time.Time]int) attendance.DailyAttendance {
	active := c.IsActiveDay(day)
	count := 0
	if active {
		count = enrolled - cancelled[day]
		if count < 0 {
			count = 0
		}
	}

	counts := make(map[string]int, len(c.Meals))
	for _, meal := range c.Meals {
		counts[meal] = count
	}
	return attendance.DailyAttendance{Date: day, Active: active, Counts: counts}
}
