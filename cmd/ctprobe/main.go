// Command ctprobe reports how a byte comparison behaves on cache-hot
// versus cache-cold buffers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	ctmemcmp "github.com/r3tima/ct-memcmp"
	"github.com/r3tima/ct-memcmp/bench"
	"github.com/r3tima/ct-memcmp/jit"
)

func main() {
	size := flag.Int("size", 64, "Buffer size in bytes")
	iterations := flag.Int("iterations", 1000, "Warm-up comparisons on the hot buffer")
	warmup := flag.Duration("warmup", 500*time.Millisecond, "Pause between warm-up and measurement")
	runs := flag.Int("runs", 5, "Number of measurements")
	useJIT := flag.Bool("jit", false, "Compare with generated machine code instead of the Go implementation")
	seed := flag.Uint64("seed", 0, "Register shuffle seed for -jit (0 = random, fixed registers if -jit is unset)")
	flag.Parse()

	if err := run(*size, *iterations, *warmup, *runs, *useJIT, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(size, iterations int, warmup time.Duration, runs int, useJIT bool, seed uint64) (err error) {
	cmp := ctmemcmp.Comparator(ctmemcmp.Compare)
	if useJIT {
		var s jit.Strategy = jit.DefaultRegisters
		if seed != 0 {
			s = jit.NewShuffled(seed)
		}
		var f *jit.Func
		if f, err = jit.Compile(s); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, f.Close()) }()
		fmt.Printf("Generated %d bytes of code, registers %v\n", len(f.Code()), f.Registers())
		cmp = f.Compare
	}

	h, err := bench.New(cmp,
		bench.WithBufferSize(size),
		bench.WithIterations(iterations),
		bench.WithWarmup(warmup),
		bench.WithRuns(runs),
	)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, h.Close()) }()

	_, err = h.Run(os.Stdout)
	return err
}
