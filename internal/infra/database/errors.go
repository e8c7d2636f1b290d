package database

import "catering_attendance_service/internal/domain/domainerr"

// Store-level sentinels, shared by the Postgres and memory drivers so the
// application layer never matches on driver-specific errors.
var (
	ErrCateringNotFound    = domainerr.New(domainerr.KindNotFound, "catering not found")
	ErrGroupNotFound       = domainerr.New(domainerr.KindNotFound, "group not found")
	ErrStudentNotFound     = domainerr.New(domainerr.KindNotFound, "student not found")
	ErrRecordNotFound      = domainerr.New(domainerr.KindNotFound, "cancellation record not found")
	ErrMessageNotFound     = domainerr.New(domainerr.KindNotFound, "message not found")
	ErrConcurrencyConflict = domainerr.New(domainerr.KindConcurrencyConflict, "concurrent write conflict")
)
