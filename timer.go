package ctmemcmp

import "time"

// timerSource is one platform's free-running counter.
type timerSource struct {
	name      string
	read      func() uint64
	frequency func() uint64 // Hz, 0 if unknown
}

// ReadTimer returns the current value of the platform timer. Deltas between
// two reads are what the benchmark harness reports as cycles.
func ReadTimer() uint64 {
	return platformTimer.read()
}

// TimerName returns the name of the platform timer being used.
func TimerName() string {
	return platformTimer.name
}

// TimerFrequency returns the timer frequency in Hz. On amd64 the first call
// calibrates the TSC against the wall clock and blocks for a few milliseconds.
func TimerFrequency() uint64 {
	return platformTimer.frequency()
}

// TimerResolutionNs returns the length of one tick in nanoseconds.
func TimerResolutionNs() float64 {
	f := TimerFrequency()
	if f == 0 {
		return 1
	}
	return float64(time.Second) / float64(f)
}

// TicksToDuration converts a timer delta to wall time.
func TicksToDuration(ticks uint64) time.Duration {
	return time.Duration(float64(ticks) * TimerResolutionNs())
}
