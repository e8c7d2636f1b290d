// internal/domain/attendance/record.go
package attendance

import (
	"time"

	"catering_attendance_service/internal/domain/domainerr"

	"github.com/google/uuid"
)

// Ledger preconditions, checked before any write reaches the store.
var (
	ErrInactiveDate       = domainerr.New(domainerr.KindInactiveDate, "date is not an active service day for the catering")
	ErrPastCutoff         = domainerr.New(domainerr.KindPastCutoff, "the cancellation cutoff for this date has passed")
	ErrNoCutoffConfigured = domainerr.New(domainerr.KindNoCutoffConfigured, "catering has no cutoff, same-day cancellation is disallowed")
)

// CancellationRecord marks one student's attendance for one service day as
// cancelled or restored. One record per (student, catering, date) key;
// last write wins.
type CancellationRecord struct {
	StudentID  uuid.UUID
	CateringID uuid.UUID
	Date       time.Time // midnight UTC calendar date
	Cancelled  bool
	RecordedAt time.Time
}

// Key identifies a cancellation record.
type Key struct {
	StudentID  uuid.UUID
	CateringID uuid.UUID
	Date       time.Time
}

func (r *CancellationRecord) Key() Key {
	return Key{StudentID: r.StudentID, CateringID: r.CateringID, Date: r.Date}
}

// DailyAttendance is the derived per-day, per-meal expected headcount.
// Counts holds an entry for every meal of the catering; on inactive days
// every entry is zero.
type DailyAttendance struct {
	Date   time.Time
	Active bool
	Counts map[string]int
}

// MonthView covers every calendar day of one month for one catering.
type MonthView struct {
	CateringID uuid.UUID
	Year       int
	Month      time.Month
	Meals      []string
	Days       []DailyAttendance
}
