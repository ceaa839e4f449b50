package domain

import "time"

// Clock supplies the current time to managers.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC truncated to microseconds,
// the precision Postgres keeps for timestamptz.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// FixedClock always returns the same instant. Advance moves it forward.
type FixedClock struct {
	At time.Time
}

func (c *FixedClock) Now() time.Time { return c.At }

func (c *FixedClock) Advance(d time.Duration) { c.At = c.At.Add(d) }
