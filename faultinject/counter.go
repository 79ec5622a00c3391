package faultinject

import "sync/atomic"

// Counter counts handled faults. The zero value is ready to use and may be
// shared between injectors.
type Counter struct {
	n atomic.Uint64
}

// Add records n faults.
func (c *Counter) Add(n uint64) {
	c.n.Add(n)
}

// Load returns the number of faults recorded since the last Reset.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}

// Reset sets the count to zero and returns the previous value.
func (c *Counter) Reset() uint64 {
	return c.n.Swap(0)
}
