//go:build !amd64

package cacheops

import "time"

var (
	epoch = time.Now()
	sink  byte
)

// Flush is a no-op on this architecture.
func Flush(p *byte) {}

// MFence is a no-op on this architecture.
func MFence() {}

// LFence is a no-op on this architecture.
func LFence() {}

// Touch performs one load of *p.
func Touch(p *byte) {
	sink = *p
}

// TimeLoad returns the nanoseconds spent on one load of *p.
func TimeLoad(p *byte) uint64 {
	start := time.Since(epoch)
	sink = *p
	return uint64(time.Since(epoch) - start)
}

// Name returns the timer used by TimeLoad.
func Name() string {
	return "time.Now"
}
