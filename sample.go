package ctmemcmp

import "slices"

// Sample holds one reload latency per oracle page, in load-timer ticks.
// Index i is the latency of the page for byte value i.
type Sample [Candidates]uint64

// sample times one load of each oracle page in index order. Nothing is
// flushed between loads.
func (e *Engine) sample(o *Oracle, out *Sample) {
	for i := 0; i < Candidates; i++ {
		out[i] = e.hw.timeLoad(o.line(byte(i)))
	}
}

// CalibrateHitThreshold measures warm and cold reload latencies on the
// oracle's pages and returns the midpoint of their medians. rounds is the
// number of passes over all 256 pages; values below 1 are treated as 1.
//
// The oracle's cache state is left undefined; Probe resets it anyway.
func (e *Engine) CalibrateHitThreshold(o *Oracle, rounds int) (uint64, error) {
	if o == nil {
		return 0, ErrNilArgument
	}
	if o.closed() {
		return 0, ErrClosed
	}
	if rounds < 1 {
		rounds = 1
	}

	warm := make([]uint64, 0, rounds*Candidates)
	cold := make([]uint64, 0, rounds*Candidates)
	for r := 0; r < rounds; r++ {
		for i := 0; i < Candidates; i++ {
			p := o.line(byte(i))
			e.hw.touch(p)
			warm = append(warm, e.hw.timeLoad(p))

			e.hw.flush(p)
			e.hw.fence()
			cold = append(cold, e.hw.timeLoad(p))
		}
	}
	slices.Sort(warm)
	slices.Sort(cold)

	hit, miss := warm[len(warm)/2], cold[len(cold)/2]
	if miss <= hit {
		// No separation between hits and misses; fall back to the
		// smallest usable threshold so decoding reports no signal.
		return 1, nil
	}
	return hit + (miss-hit)/2, nil
}
