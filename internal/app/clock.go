package app

import "time"

// Clock supplies wall-clock time so the cutoff deadline and digest jobs
// stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
