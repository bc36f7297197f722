package shared

import "time"

// Clock abstracts the ambient time source so batch jobs and tests can
// run against a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Instant time.Time
}

// Now returns the configured instant.
func (c FixedClock) Now() time.Time {
	return c.Instant
}
