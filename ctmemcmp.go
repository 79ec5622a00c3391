// Package ctmemcmp recovers secret bytes from a byte comparison through a
// transactional cache-timing oracle.
//
// The engine compares a secret against an attacker input inside a hardware
// transaction. For every mismatching position it loads the oracle page that
// corresponds to the secret byte. The transaction rolls back the
// architectural effects, but the cache line fetched by that load stays warm.
// A Flush+Reload pass over all 256 oracle pages then shows which value the
// secret held.
//
// # Usage
//
//	engine, err := ctmemcmp.NewEngine(ctmemcmp.WithHitThreshold(80))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	oracle, err := ctmemcmp.NewOracle(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer oracle.Close()
//
//	guess, res, err := engine.Recover([]byte("SECRET"), []byte("XECRET"), 6, oracle)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if b, err := guess.Byte(); err == nil {
//	    fmt.Printf("leaked 0x%02x (%s)\n", b, res.Tx)
//	}
//
// # Operating conditions
//
// Signal quality assumes exclusive use of the executing core: no workload on
// a sibling hardware thread, no frequency transitions mid-probe. The engine
// cannot enforce this. Latencies are comparable within one probe only.
//
// Transactions need a CPU with RTM enabled. Without it every probe reports
// Aborted, nothing is touched and decoding yields no signal.
//
// # Architecture
//
// A probe runs, in order, on one locked OS thread:
//   - Noise suppression: map stress regions, flush each line, decommit
//   - Preparation: flush one line per oracle page, fence
//   - Transaction: compare-with-touch, then commit
//   - Sampling: one timed load per oracle page, index 0..255
//   - Teardown: unmap stress regions on every path
//
// Decoding is a separate step (Decode) so callers can keep raw samples.
package ctmemcmp

import (
	"github.com/r3tima/ct-memcmp/internal/mem"
)

// Engine runs transactional oracle probes. An Engine holds no per-probe
// state and may be shared, but each concurrent probe needs its own Oracle.
type Engine struct {
	cfg       *Config
	hw        hardware
	mapRegion func(size int) (*mem.Region, error)
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		hw:        native{},
		mapRegion: mem.Map,
	}, nil
}

// HitThreshold returns the configured cache-hit threshold in load-timer ticks.
func (e *Engine) HitThreshold() uint64 {
	return e.cfg.hitThreshold
}

// Recover probes once and decodes the sample with the configured threshold.
func (e *Engine) Recover(secret, input []byte, n int, oracle *Oracle) (Guess, ProbeResult, error) {
	var s Sample
	res, err := e.Probe(secret, input, n, oracle, &s)
	if err != nil {
		return Guess{}, ProbeResult{}, err
	}
	return Decode(&s, e.cfg.hitThreshold), res, nil
}
