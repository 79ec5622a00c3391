// Package sandbox validates addresses before a sandboxed memory access.
//
// Violations are returned as errors describing the offending access; they
// are recoverable and no access is performed.
package sandbox

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/r3tima/ct-memcmp/internal/cacheops"
)

const (
	// MemoryLimit is the exclusive upper bound of the sandbox address space.
	MemoryLimit = 1 << 20

	// Alignment is the required address alignment in bytes.
	Alignment = 64

	// dataMask keeps the low 48 bits of a value.
	dataMask = 0x0000_FFFF_FFFF_FFFF
)

var (
	// ErrOutOfBounds is returned when an access leaves the sandbox or its
	// end address overflows.
	ErrOutOfBounds = errors.New("sandbox: memory access out of bounds")

	// ErrMisaligned is returned when an address is not Alignment aligned.
	ErrMisaligned = errors.New("sandbox: memory address not properly aligned")
)

// ViolationError describes a rejected access.
type ViolationError struct {
	Addr uintptr
	Size uintptr
	Err  error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: addr=%#x size=%d", e.Err, e.Addr, e.Size)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

// BoundsCheck reports whether [addr, addr+size) lies inside the sandbox.
// An end address that wraps around is rejected.
func BoundsCheck(addr, size uintptr) bool {
	end, carry := bits.Add64(uint64(addr), uint64(size), 0)
	return carry == 0 && end <= MemoryLimit
}

// AlignmentCheck reports whether addr is a multiple of Alignment.
func AlignmentCheck(addr uintptr) bool {
	return addr%Alignment == 0
}

// Sanitize clears the upper 16 bits of data.
func Sanitize(data uint64) uint64 {
	return data & dataMask
}

// Validate gates an access of size bytes at addr carrying data. On success
// it fences speculative execution and returns the sanitized data.
func Validate(addr, size uintptr, data uint64) (uint64, error) {
	if !BoundsCheck(addr, size) {
		return 0, &ViolationError{Addr: addr, Size: size, Err: ErrOutOfBounds}
	}
	if !AlignmentCheck(addr) {
		return 0, &ViolationError{Addr: addr, Size: size, Err: ErrMisaligned}
	}

	// No speculative use of data past a check that failed architecturally.
	cacheops.LFence()

	return Sanitize(data), nil
}
