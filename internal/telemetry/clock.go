package telemetry

import (
	"golang.org/x/sys/unix"
)

// BootOffsetNS computes boot_ns = realtime − monotonic: the one-shot
// startup alignment (spec.md §4.7) that lets kernel handlers, which only
// see CLOCK_MONOTONIC, emit wall-clock nanosecond timestamps by adding this
// offset. Uses golang.org/x/sys/unix instead of a hand-rolled
// clock_gettime(2) wrapper.
func BootOffsetNS() (int64, error) {
	var realtime, monotonic unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &realtime); err != nil {
		return 0, err
	}
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &monotonic); err != nil {
		return 0, err
	}
	return realtime.Nano() - monotonic.Nano(), nil
}
