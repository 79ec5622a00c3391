//go:build amd64

package ctmemcmp

import (
	"slices"
	"sync"
	"time"
)

// rdtsc is LFENCE; RDTSC. Implemented in timer_amd64.s.
func rdtsc() uint64

var platformTimer = timerSource{
	name:      "rdtsc",
	read:      rdtsc,
	frequency: sync.OnceValue(calibrateTSC),
}

// calibrateTSC busy-waits against the monotonic clock for a few short
// windows and returns the median rate.
func calibrateTSC() uint64 {
	const (
		windows = 7
		window  = 2 * time.Millisecond
	)

	rates := make([]uint64, 0, windows)
	for i := 0; i < windows; i++ {
		t0, c0 := time.Now(), rdtsc()
		for time.Since(t0) < window {
		}
		c1, el := rdtsc(), time.Since(t0)
		if el > 0 && c1 > c0 {
			rates = append(rates, uint64(float64(c1-c0)/el.Seconds()))
		}
	}
	if len(rates) == 0 {
		return 0
	}
	slices.Sort(rates)
	return rates[len(rates)/2]
}
