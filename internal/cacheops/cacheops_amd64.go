//go:build amd64

package cacheops

// Flush evicts the cache line holding *p from every level of the hierarchy.
// Implemented in cacheops_amd64.s
//
//go:noescape
func Flush(p *byte)

// MFence orders all prior loads, stores and flushes.
func MFence()

// LFence waits for all prior instructions to complete locally.
func LFence()

// Touch performs exactly one load of *p.
//
//go:noescape
func Touch(p *byte)

// TimeLoad returns the TSC ticks spent on one serialized load of *p.
//
//go:noescape
func TimeLoad(p *byte) uint64

// Name returns the timer used by TimeLoad.
func Name() string {
	return "rdtscp"
}
