//go:build !amd64 && !arm64

package ctmemcmp

import "time"

var timerEpoch = time.Now()

// Nanoseconds on the monotonic clock since package init.
var platformTimer = timerSource{
	name: "time.Now",
	read: func() uint64 {
		return uint64(time.Since(timerEpoch))
	},
	frequency: func() uint64 {
		return uint64(time.Second)
	},
}
