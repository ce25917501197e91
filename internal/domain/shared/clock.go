package shared

import "time"

// Clock abstracts the current time so that due-date evaluation and report
// period derivation are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock that always returns the same instant
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
