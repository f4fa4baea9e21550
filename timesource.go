package pacing

import (
	"math"
	"time"
)

// TimeSource reads a monotonic clock and suspends the caller.
// Instants and durations are float64 seconds.
type TimeSource interface {
	// Now returns the current monotonic time in seconds.
	Now() float64

	// Sleep suspends the caller for approximately d seconds.
	// A non-positive d returns immediately.
	Sleep(d float64)
}

// SystemClock is the production TimeSource.
type SystemClock struct{}

var _ TimeSource = SystemClock{}

// Now returns monotonic seconds. Unaffected by wall-clock adjustments.
func (SystemClock) Now() float64 {
	return monotonicNow()
}

// Sleep blocks for d seconds. Early wakeups retry only the remainder.
func (SystemClock) Sleep(d float64) {
	if d <= 0 || math.IsNaN(d) {
		return
	}
	sleepFor(d)
}

// maxSeconds is the longest span a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// SplitSeconds splits s into whole seconds (floored) and the remaining
// nanoseconds, e.g. 1.5 → (1, 500000000). NaN yields (0, 0) and values
// beyond the range of time.Duration saturate at it.
func SplitSeconds(s float64) (sec, nsec int64) {
	switch {
	case math.IsNaN(s):
		return 0, 0
	case s >= float64(maxSeconds):
		return maxSeconds, 0
	case s <= -float64(maxSeconds):
		return -maxSeconds, 0
	}
	whole := math.Floor(s)
	sec = int64(whole)
	nsec = int64((s - whole) * 1e9)
	if nsec >= 1e9 {
		sec++
		nsec -= 1e9
	}
	return sec, nsec
}

// JoinSeconds is the inverse of SplitSeconds.
func JoinSeconds(sec, nsec int64) float64 {
	return float64(sec) + float64(nsec)/1e9
}

// Duration converts seconds to a time.Duration.
func Duration(s float64) time.Duration {
	sec, nsec := SplitSeconds(s)
	return time.Duration(sec)*time.Second + time.Duration(nsec)
}
