// Package faultinject runs a comparison over memory that contains a guard
// page and counts the faults it takes.
//
// Go does not let a program install its own SIGSEGV handler; the runtime
// owns it. The injector instead enables debug.SetPanicOnFault, which turns
// a fault on a non-nil address into a recoverable runtime panic for the
// current goroutine.
//
// # Hazard
//
// SetPanicOnFault is per goroutine. A fault raised on any other goroutine
// while Inject runs, for example by a function that spawns workers, is not
// covered and still crashes the process. Nested or concurrent faults inside
// the runtime itself are likewise not handled.
package faultinject

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	ctmemcmp "github.com/r3tima/ct-memcmp"
	"github.com/r3tima/ct-memcmp/internal/mem"
)

var (
	// ErrLayout is returned for an invalid region/guard layout.
	ErrLayout = errors.New("faultinject: invalid memory layout")

	// ErrAllocation is returned when the region cannot be mapped or protected.
	ErrAllocation = errors.New("faultinject: memory allocation failed")
)

// FaultError reports a fault taken by the injected function.
type FaultError struct {
	// Addr is the faulting address, zero if the runtime did not report one.
	Addr uintptr
	// Err is the runtime error the fault was converted into.
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("faultinject: memory fault at %#x: %v", e.Addr, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Injector owns a mapping with one PROT_NONE guard page.
type Injector struct {
	region      *mem.Region
	size        int
	guardOffset int
	counter     *Counter
}

// New maps size bytes and protects the page at guardOffset. Both must be
// page aligned and the guard page must lie inside the region. Faults are
// recorded in counter, which must not be nil.
func New(size, guardOffset int, counter *Counter) (*Injector, error) {
	ps := mem.PageSize()
	if counter == nil {
		return nil, fmt.Errorf("%w: nil counter", ErrLayout)
	}
	if size <= 0 || size%ps != 0 || size/2 == 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of the page size %d", ErrLayout, size, ps)
	}
	if guardOffset < 0 || guardOffset%ps != 0 || guardOffset+ps > size {
		return nil, fmt.Errorf("%w: guard page at %d outside region of %d bytes", ErrLayout, guardOffset, size)
	}

	region, err := mem.Map(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	if err := region.Protect(guardOffset, ps, mem.None); err != nil {
		region.Unmap()
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	return &Injector{
		region:      region,
		size:        size,
		guardOffset: guardOffset,
		counter:     counter,
	}, nil
}

// GuardOffset returns the offset of the protected page.
func (in *Injector) GuardOffset() int {
	return in.guardOffset
}

// Inject runs fn over the two halves of the region as fn(lhs, rhs, size/2).
// If fn touches the guard page the fault is counted and returned as
// *FaultError. The goroutine's previous SetPanicOnFault setting is restored
// before Inject returns.
func (in *Injector) Inject(fn ctmemcmp.Comparator) (result int, err error) {
	buf := in.region.Bytes()
	if buf == nil {
		return 0, mem.ErrUnmapped
	}
	half := in.size / 2

	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rerr, ok := r.(runtime.Error)
		if !ok {
			panic(r)
		}
		// Only memory faults carry an address.
		af, ok := r.(interface{ Addr() uintptr })
		if !ok {
			panic(r)
		}
		in.counter.Add(1)
		result, err = 0, &FaultError{Addr: af.Addr(), Err: rerr}
	}()

	return fn(buf[:half], buf[half:], half), nil
}

// Close unmaps the region.
func (in *Injector) Close() error {
	return in.region.Unmap()
}
