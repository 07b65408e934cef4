// Package clock provides the time source used by the application services.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, in UTC.
func System() Clock { return systemClock{} }

// FixedClock always returns the same instant. Tests may move it with Set or Advance.
type FixedClock struct {
	now time.Time
}

// Fixed returns a FixedClock pinned at t.
func Fixed(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC()}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time { return c.now }

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) { c.now = t.UTC() }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
