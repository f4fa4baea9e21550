//go:build linux

package pacing

import (
	"golang.org/x/sys/unix"
)

func monotonicNow() float64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallbackNow()
	}
	sec, nsec := ts.Unix()
	return JoinSeconds(sec, nsec)
}

// sleepFor retries the remaining time when a signal interrupts nanosleep.
func sleepFor(d float64) {
	sec, nsec := SplitSeconds(d)
	req := unix.NsecToTimespec(sec*1e9 + nsec)
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&req, &rem)
		if err != unix.EINTR {
			return
		}
		req = rem
	}
}
