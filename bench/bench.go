// Package bench measures a comparison on cache-hot and cache-cold buffers
// and reports cycle deltas alongside hardware counters.
package bench

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	ctmemcmp "github.com/r3tima/ct-memcmp"
	"github.com/r3tima/ct-memcmp/internal/cacheops"
	"github.com/r3tima/ct-memcmp/internal/mem"
	"github.com/r3tima/ct-memcmp/internal/perf"
)

var (
	// ErrInvalidConfig is returned when an option is out of range.
	ErrInvalidConfig = errors.New("bench: invalid configuration")

	// ErrAllocation is returned when a buffer cannot be mapped.
	ErrAllocation = errors.New("bench: buffer allocation failed")
)

// fill is the byte both buffers are initialized with.
const fill = 0xAA

// Measurement is one hot/cold comparison pair.
type Measurement struct {
	// HotTicks and ColdTicks are platform timer ticks for one comparison.
	HotTicks  uint64
	ColdTicks uint64

	// CycleDelta is ColdTicks - HotTicks.
	CycleDelta int64

	// Counters cover both timed comparisons. Zero when unavailable.
	BranchMisses    uint64
	CacheReferences uint64
	CacheMisses     uint64

	// CountersErr is why counters could not be read, nil when they were.
	CountersErr error
}

// MissRate returns cache misses as a percentage of references, 0 when
// nothing was referenced.
func (m Measurement) MissRate() float64 {
	if m.CacheReferences == 0 {
		return 0
	}
	return float64(m.CacheMisses) / float64(m.CacheReferences) * 100
}

// Harness owns the hot and cold buffers.
type Harness struct {
	cfg  *Config
	cmp  ctmemcmp.Comparator
	hot  *mem.Region
	cold *mem.Region
}

// New maps the buffers and prepares a harness for cmp.
func New(cmp ctmemcmp.Comparator, opts ...Option) (*Harness, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cmp == nil {
		return nil, fmt.Errorf("%w: nil comparator", ErrInvalidConfig)
	}

	hot, err := mem.Map(cfg.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("%w: hot buffer: %v", ErrAllocation, err)
	}
	cold, err := mem.Map(cfg.bufferSize)
	if err != nil {
		hot.Unmap()
		return nil, fmt.Errorf("%w: cold buffer: %v", ErrAllocation, err)
	}
	for _, r := range []*mem.Region{hot, cold} {
		buf := r.Bytes()[:cfg.bufferSize]
		for i := range buf {
			buf[i] = fill
		}
	}

	return &Harness{cfg: cfg, cmp: cmp, hot: hot, cold: cold}, nil
}

// Measure warms the hot buffer, waits, evicts the cold buffer and times
// one comparison on each.
func (h *Harness) Measure() Measurement {
	n := h.cfg.bufferSize
	hot := h.hot.Bytes()[:n]
	cold := h.cold.Bytes()[:n]

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Phase 1: Warm up the hot buffer
	for i := 0; i < h.cfg.iterations; i++ {
		h.cmp(hot, hot, n)
	}
	time.Sleep(h.cfg.warmup)

	// Phase 2: Evict the cold buffer
	cacheops.FlushRange(cold)
	cacheops.MFence()

	group, cerr := perf.Open(perf.BranchMisses, perf.CacheReferences, perf.CacheMisses)
	if cerr == nil {
		defer group.Close()
		if cerr = group.Reset(); cerr == nil {
			cerr = group.Enable()
		}
	}

	// Phase 3: Timed comparisons
	start := ctmemcmp.ReadTimer()
	h.cmp(hot, hot, n)
	hotTicks := ctmemcmp.ReadTimer() - start

	start = ctmemcmp.ReadTimer()
	h.cmp(cold, cold, n)
	coldTicks := ctmemcmp.ReadTimer() - start

	m := Measurement{
		HotTicks:   hotTicks,
		ColdTicks:  coldTicks,
		CycleDelta: int64(coldTicks) - int64(hotTicks),
	}

	if cerr == nil {
		cerr = group.Disable()
	}
	if cerr == nil {
		var counts perf.Counts
		if counts, cerr = group.Read(); cerr == nil {
			m.BranchMisses = counts[perf.BranchMisses]
			m.CacheReferences = counts[perf.CacheReferences]
			m.CacheMisses = counts[perf.CacheMisses]
		}
	}
	m.CountersErr = cerr
	return m
}

// Run writes the report header, then measures and reports each run.
func (h *Harness) Run(w io.Writer) ([]Measurement, error) {
	if err := WriteHeader(w, h.cfg); err != nil {
		return nil, err
	}

	ms := make([]Measurement, 0, h.cfg.runs)
	for i := 0; i < h.cfg.runs; i++ {
		m := h.Measure()
		ms = append(ms, m)
		if err := WriteMeasurement(w, i+1, m); err != nil {
			return ms, err
		}
		if i+1 < h.cfg.runs {
			time.Sleep(h.cfg.settle)
		}
	}
	return ms, nil
}

// Close unmaps the buffers.
func (h *Harness) Close() error {
	return errors.Join(h.hot.Unmap(), h.cold.Unmap())
}
