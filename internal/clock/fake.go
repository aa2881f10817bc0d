package clock

import "time"

// FakeClock is a manually advanced Clock for tests that exercise freshness
// bands and period windows. It always reports UTC.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward (or back, with a negative duration).
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
