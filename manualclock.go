package pacing

import (
	"math"
	"sync"
)

// ManualClock is a TimeSource driven by the caller. Sleep advances
// virtual time instead of blocking, so paced loops can be simulated
// deterministically.
type ManualClock struct {
	mu     sync.Mutex
	now    float64
	sleeps []float64
}

var _ TimeSource = (*ManualClock)(nil)

// NewManualClock returns a clock reading start.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the virtual time in seconds.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep records d and advances the clock by it. Non-positive and NaN
// durations are ignored and not recorded.
func (c *ManualClock) Sleep(d float64) {
	if d <= 0 || math.IsNaN(d) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now += d
}

// Set moves the clock to t.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d, simulating work.
func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Sleeps returns a copy of every recorded sleep, oldest first.
func (c *ManualClock) Sleeps() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
