package ctmemcmp

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/r3tima/ct-memcmp/internal/rtm"
)

// TxStatus is the outcome of the transactional phase of a probe.
type TxStatus int

const (
	// Committed means the compare-with-touch body ran and committed.
	Committed TxStatus = iota
	// Aborted means the body did not complete. No touch is guaranteed to
	// have happened. This is an expected outcome, not an error.
	Aborted
)

// String returns the string representation of the status.
func (s TxStatus) String() string {
	switch s {
	case Committed:
		return "Committed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// AbortCause is the abort status word reported by the CPU.
type AbortCause = rtm.Cause

// ProbeResult describes one probe invocation.
type ProbeResult struct {
	// Tx is the transaction outcome.
	Tx TxStatus
	// Cause is the abort status when Tx is Aborted, zero otherwise.
	Cause AbortCause
}

// String returns a human-readable summary of the result.
func (r ProbeResult) String() string {
	if r.Tx == Aborted {
		return fmt.Sprintf("Aborted (%s)", r.Cause)
	}
	return r.Tx.String()
}

// Probe compares secret[:n] against input[:n] inside a hardware transaction,
// touching oracle.Page(secret[i]) for every mismatching i, and stores the
// reload latency of all 256 oracle pages in out.
//
// Preconditions: len(secret) >= n and len(input) >= n (checked), and n small
// enough for the caller's purpose (not checked; one page per byte value is
// always enough to encode any secret byte).
//
// An aborted transaction is reported through ProbeResult.Tx and still
// produces a sample. Errors are returned only for invalid arguments and for
// failures that would void the noise-suppression guarantee; in that case no
// transaction runs and out is left untouched.
//
// Probe never closes oracle. Stress regions are released before it returns,
// whatever the transaction outcome.
func (e *Engine) Probe(secret, input []byte, n int, oracle *Oracle, out *Sample) (res ProbeResult, err error) {
	if oracle == nil || out == nil {
		return ProbeResult{}, ErrNilArgument
	}
	if oracle.closed() {
		return ProbeResult{}, ErrClosed
	}
	if n < 0 || len(secret) < n || len(input) < n {
		return ProbeResult{}, fmt.Errorf("%w: n=%d secret=%d input=%d", ErrShortBuffer, n, len(secret), len(input))
	}
	secret, input = secret[:n], input[:n]

	// Flushes, transaction and timing must all happen on one core.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	regions, err := e.mapStress()
	if err != nil {
		return ProbeResult{}, err
	}
	defer func() {
		if rerr := releaseStress(regions); rerr != nil {
			err = errors.Join(err, fmt.Errorf("ctmemcmp: release stress regions: %w", rerr))
		}
	}()

	e.prepare(oracle)
	if err := e.suppress(regions); err != nil {
		return ProbeResult{}, err
	}
	e.hw.fence()

	tx := e.hw.transact(func() {
		for i := range secret {
			s := secret[i]
			if s != input[i] {
				e.hw.touch(oracle.line(s))
			}
		}
	})

	e.sample(oracle, out)

	if !tx.Committed() {
		return ProbeResult{Tx: Aborted, Cause: tx.Cause}, nil
	}
	return ProbeResult{Tx: Committed}, nil
}

// prepare evicts every oracle page so the transaction starts from a cold
// array. One flush per page: only the first line of each page is ever
// touched or timed.
func (e *Engine) prepare(o *Oracle) {
	for i := 0; i < Candidates; i++ {
		e.hw.flush(o.line(byte(i)))
	}
	e.hw.fence()
}
