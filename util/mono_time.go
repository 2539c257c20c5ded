package util

import "golang.org/x/sys/unix"

// MonoNanos returns CLOCK_MONOTONIC in nanoseconds. This is the clock
// kernel transmit-time scheduling is armed against, so absolute transmit
// timestamps must be computed from it and not from the wall clock.
func MonoNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
