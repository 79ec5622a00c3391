package ctmemcmp

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Candidate is one oracle page ranked by reload latency.
type Candidate struct {
	Value   byte
	Latency uint64
}

// Guess is the decoded result of a sample.
type Guess struct {
	// Value is the recovered byte, zero unless Recovered.
	Value byte

	// Recovered is true when at least one page fell below the threshold and
	// the hits are a strict minority of the candidates.
	Recovered bool

	// Threshold is the hit threshold used for decoding.
	Threshold uint64

	// Ranked lists all 256 candidates by ascending latency. Equal latencies
	// keep ascending byte order.
	Ranked []Candidate

	// Hits is the prefix of Ranked below Threshold.
	Hits []Candidate
}

// Decode ranks the sample and applies the hit threshold. The guess is the
// minimum-latency page, reported as recovered only if that latency is
// strictly below threshold and fewer than half the pages are hits. A sample
// where most pages look cached carries no signal: the threshold is below the
// baseline, and the argmin would be an arbitrary byte.
func Decode(s *Sample, threshold uint64) Guess {
	ranked := make([]Candidate, Candidates)
	for i, lat := range s {
		ranked[i] = Candidate{Value: byte(i), Latency: lat}
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return cmp.Compare(a.Latency, b.Latency)
	})

	hits := 0
	for hits < len(ranked) && ranked[hits].Latency < threshold {
		hits++
	}

	g := Guess{
		Recovered: hits > 0 && hits < Candidates/2,
		Threshold: threshold,
		Ranked:    ranked,
		Hits:      ranked[:hits],
	}
	if g.Recovered {
		g.Value = ranked[0].Value
	}
	return g
}

// Byte returns the recovered byte, or ErrNoSignal.
func (g Guess) Byte() (byte, error) {
	if !g.Recovered {
		return 0, ErrNoSignal
	}
	return g.Value, nil
}

// Ambiguous reports whether more than one page looked like a cache hit.
func (g Guess) Ambiguous() bool {
	return len(g.Hits) > 1
}

// String returns a human-readable summary of the guess.
func (g Guess) String() string {
	if !g.Recovered {
		if len(g.Ranked) == 0 {
			return "no signal"
		}
		if len(g.Hits) > 0 {
			return fmt.Sprintf("no signal: %d of %d pages below threshold %d",
				len(g.Hits), len(g.Ranked), g.Threshold)
		}
		return fmt.Sprintf("no signal: fastest 0x%02x at %d ticks, threshold %d",
			g.Ranked[0].Value, g.Ranked[0].Latency, g.Threshold)
	}
	if g.Ambiguous() {
		vals := make([]string, len(g.Hits))
		for i, c := range g.Hits {
			vals[i] = fmt.Sprintf("0x%02x", c.Value)
		}
		return fmt.Sprintf("ambiguous: %s below threshold %d", strings.Join(vals, ","), g.Threshold)
	}
	return fmt.Sprintf("0x%02x at %d ticks, threshold %d", g.Value, g.Ranked[0].Latency, g.Threshold)
}
