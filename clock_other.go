//go:build !linux

package pacing

import "time"

func monotonicNow() float64 {
	return fallbackNow()
}

func sleepFor(d float64) {
	time.Sleep(Duration(d))
}
