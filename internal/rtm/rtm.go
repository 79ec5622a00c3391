// Package rtm wraps Intel Restricted Transactional Memory.
//
// A transaction is a two-state machine. Entering it either runs the body
// (Entered) or falls through to the abort path (Aborted); there is no third
// outcome. When the body returns, Run commits before handing control back,
// so callers never observe an open transaction.
//
// An abort can happen at any point inside the body: a conflicting access from
// another core, a capacity overflow, an interrupt, a page fault or a syscall.
// The CPU then discards every architectural side effect of the body and
// resumes at the abort path with the cause in EAX. Run reports that as
// Aborted. It is an expected outcome, not an error.
package rtm

import "strings"

// Status is the outcome of entering a transaction.
type Status int

const (
	// Entered means the body ran and the transaction committed.
	Entered Status = iota
	// Aborted means the body did not run to completion (or at all).
	Aborted
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case Entered:
		return "Entered"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Cause is the abort status word reported by the CPU in EAX.
type Cause uint32

// Abort cause bits, as defined for XBEGIN.
const (
	CauseExplicit Cause = 1 << 0 // XABORT executed
	CauseRetry    Cause = 1 << 1 // may succeed on retry
	CauseConflict Cause = 1 << 2 // memory conflict with another agent
	CauseCapacity Cause = 1 << 3 // read/write set overflow
	CauseDebug    Cause = 1 << 4 // debug breakpoint hit
	CauseNested   Cause = 1 << 5 // abort inside a nested transaction

	// CauseUnsupported is synthetic. Bits 6-23 are reserved by the
	// hardware, so it never collides with a real abort status.
	CauseUnsupported Cause = 1 << 23
)

// Code returns the XABORT immediate (bits 31:24). Only meaningful when
// CauseExplicit is set.
func (c Cause) Code() uint8 {
	return uint8(c >> 24)
}

// String lists the set cause bits, "none" for a zero status word.
func (c Cause) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		bit  Cause
		name string
	}{
		{CauseExplicit, "explicit"},
		{CauseRetry, "retry"},
		{CauseConflict, "conflict"},
		{CauseCapacity, "capacity"},
		{CauseDebug, "debug"},
		{CauseNested, "nested"},
		{CauseUnsupported, "unsupported"},
	} {
		if c&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "unspecified"
	}
	return strings.Join(parts, "|")
}

// Result holds the outcome of Run.
type Result struct {
	Status Status
	// Cause is zero when Status is Entered.
	Cause Cause
}

// Committed reports whether the body ran and committed.
func (r Result) Committed() bool {
	return r.Status == Entered
}

// started is the EAX value XBEGIN leaves in place when the body executes.
const started = ^uint32(0)

// hasRTM is probed once at package initialization.
var hasRTM = detect()

// Supported reports whether the CPU exposes usable RTM instructions.
// Executing XBEGIN without it raises #UD, so Run checks this first.
func Supported() bool {
	return hasRTM
}

// Run enters a transaction and executes body inside it.
//
// body must not make syscalls, allocate, or otherwise touch anything that
// would make the transaction abort deterministically; it should be a tight
// loop over memory that is already mapped. If the CPU aborts while body is
// running, control resumes inside Run as if the transaction had never been
// entered and Run returns Aborted.
//
// When RTM is unavailable body is never executed and the result is Aborted
// with CauseUnsupported.
func Run(body func()) Result {
	if !hasRTM {
		return Result{Status: Aborted, Cause: CauseUnsupported}
	}

	status := xbegin()
	if status != started {
		return Result{Status: Aborted, Cause: Cause(status)}
	}

	body()

	// XEND outside a transaction raises #GP.
	if xtest() {
		xend()
	}
	return Result{Status: Entered}
}
