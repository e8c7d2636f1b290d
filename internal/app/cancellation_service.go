package app

import (
	"context"
	"fmt"
	"time"

	"catering_attendance_service/internal/domain/attendance"
	"catering_attendance_service/internal/domain/catering"
	"catering_attendance_service/internal/domain/group"

	"github.com/google/uuid"
)

var ErrStudentNotEnrolled = fmt.Errorf("student is not enrolled in this catering")

// CancellationService is the write side of the cancellation ledger. It
// enforces the active-day precondition and the cutoff deadline before any
// record reaches the store.
type CancellationService struct {
	cateringRepo   catering.Repository
	groupRepo      group.Repository
	attendanceRepo attendance.Repository
	clock          Clock
}

func NewCancellationService(cr catering.Repository, gr group.Repository, ar attendance.Repository, clock Clock) *CancellationService {
	return &CancellationService{
		cateringRepo:   cr,
		groupRepo:      gr,
		attendanceRepo: ar,
		clock:          clock,
	}
}

// SetCancellation upserts the cancellation flag for (student, catering,
// date). Setting the same value twice is a no-op that still succeeds.
func (s *CancellationService) SetCancellation(ctx context.Context, studentID, cateringID uuid.UUID, dateStr string, cancelled bool) error {
	date, err := catering.ParseDate(dateStr)
	if err != nil {
		return attendance.ErrInactiveDate
	}
	return s.setCancellation(ctx, studentID, cateringID, date, cancelled)
}

// SetCancellationOn is SetCancellation for an already-parsed calendar date.
func (s *CancellationService) SetCancellationOn(ctx context.Context, studentID, cateringID uuid.UUID, date time.Time, cancelled bool) error {
	return s.setCancellation(ctx, studentID, cateringID, catering.DateOf(date), cancelled)
}

func (s *CancellationService) setCancellation(ctx context.Context, studentID, cateringID uuid.UUID, date time.Time, cancelled bool) error {
	c, err := s.cateringRepo.GetByID(ctx, cateringID)
	if err != nil {
		return err
	}
	st, err := s.groupRepo.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if st.CateringID != c.ID {
		return ErrStudentNotEnrolled
	}

	if !c.IsActiveDay(date) {
		return attendance.ErrInactiveDate
	}
	if err := checkCutoff(c, date, s.clock.Now()); err != nil {
		return err
	}

	rec := &attendance.CancellationRecord{
		StudentID:  studentID,
		CateringID: cateringID,
		Date:       date,
		Cancelled:  cancelled,
		RecordedAt: s.clock.Now(),
	}
	if err := s.attendanceRepo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to upsert cancellation record: %w", err)
	}
	return nil
}

// checkCutoff enforces the domain deadline: mutations must happen strictly
// before the date's cutoff instant. Without a configured cutoff the ledger
// freezes when the service day starts.
func checkCutoff(c *catering.Catering, date, now time.Time) error {
	if instant, ok := c.CutoffInstant(date); ok {
		if !now.Before(instant) {
			return attendance.ErrPastCutoff
		}
		return nil
	}

	today := catering.DateOf(now)
	switch {
	case date.After(today):
		return nil
	case date.Equal(today):
		return attendance.ErrNoCutoffConfigured
	default:
		return attendance.ErrPastCutoff
	}
}
