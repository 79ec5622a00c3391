package bench

import (
	"fmt"
	"io"
	"strings"
)

// WriteHeader writes the report preamble.
func WriteHeader(w io.Writer, cfg *Config) error {
	_, err := fmt.Fprintf(w,
		"Running memory comparison probe...\n"+
			"Buffer size: %d bytes\n"+
			"Iterations: %d\n"+
			"Warmup time: %dms\n\n",
		cfg.bufferSize, cfg.iterations, cfg.warmup.Milliseconds())
	return err
}

// WriteMeasurement writes one run. run is 1-based.
func WriteMeasurement(w io.Writer, run int, m Measurement) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %d:\n", run)
	fmt.Fprintf(&b, "  Cycle delta: %d cycles\n", m.CycleDelta)
	fmt.Fprintf(&b, "  Branch misses: %d\n", m.BranchMisses)
	fmt.Fprintf(&b, "  Cache references: %d\n", m.CacheReferences)
	fmt.Fprintf(&b, "  Cache misses: %d\n", m.CacheMisses)
	fmt.Fprintf(&b, "  Cache miss rate: %.2f%%\n", m.MissRate())
	if m.CountersErr != nil {
		fmt.Fprintf(&b, "  Counters unavailable: %v\n", m.CountersErr)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
