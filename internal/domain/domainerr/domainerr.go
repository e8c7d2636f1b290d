// internal/domain/domainerr/domainerr.go
package domainerr

import "errors"

// Kind is the machine-readable classification of a domain failure.
// The presentation layer maps kinds to localized text; the core never does.
type Kind string

const (
	KindInvalidDateRange     Kind = "INVALID_DATE_RANGE"
	KindMissingMeals         Kind = "MISSING_MEALS"
	KindNoWeekdaysSelected   Kind = "NO_WEEKDAYS_SELECTED"
	KindInvalidCutoffTime    Kind = "INVALID_CUTOFF_TIME"
	KindMissingRequiredField Kind = "MISSING_REQUIRED_FIELD"
	KindInactiveDate         Kind = "INACTIVE_DATE"
	KindPastCutoff           Kind = "PAST_CUTOFF"
	KindNoCutoffConfigured   Kind = "NO_CUTOFF_CONFIGURED"
	KindNotFound             Kind = "NOT_FOUND"
	KindConcurrencyConflict  Kind = "CONCURRENCY_CONFLICT"
)

// Error is a domain failure with a stable kind and a developer-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the domain kind from err or any error it wraps.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
