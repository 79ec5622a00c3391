// Package cacheops provides the cache maintenance and load-timing primitives
// used by Flush+Reload measurements.
//
// On amd64 every primitive is a single instruction sequence in assembly, so
// the compiler cannot reorder, merge or elide the memory accesses. On other
// architectures flushes and fences are no-ops and TimeLoad falls back to the
// monotonic clock; measurements there carry no cache signal.
package cacheops

// LineSize is the cache line size assumed for flush strides.
const LineSize = 64

// FlushRange flushes every cache line in buf.
func FlushRange(buf []byte) {
	for off := 0; off < len(buf); off += LineSize {
		Flush(&buf[off])
	}
}
