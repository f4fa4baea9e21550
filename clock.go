package pacing

import "time"

// started anchors the monotonic reading carried by time.Time.
var started = time.Now()

func fallbackNow() float64 {
	return time.Since(started).Seconds()
}
