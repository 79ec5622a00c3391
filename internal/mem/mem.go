//go:build unix

// Package mem manages page-aligned anonymous mappings outside the Go heap.
//
// Regions returned by Map are never moved or scanned by the garbage
// collector, so their addresses are stable for cache-line and page
// arithmetic. They must be released with Unmap.
package mem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrUnmapped is returned when operating on a region that was already unmapped.
var ErrUnmapped = errors.New("mem: region is unmapped")

// Prot is a page protection setting.
type Prot int

const (
	// ReadWrite allows loads and stores.
	ReadWrite Prot = iota
	// ReadExec allows loads and instruction fetch.
	ReadExec
	// None makes every access fault.
	None
)

func (p Prot) unix() int {
	switch p {
	case ReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	case ReadExec:
		return unix.PROT_READ | unix.PROT_EXEC
	default:
		return unix.PROT_NONE
	}
}

// PageSize returns the OS page size.
func PageSize() int {
	return unix.Getpagesize()
}

// RoundUp rounds n up to a multiple of the page size.
func RoundUp(n int) int {
	ps := PageSize()
	return (n + ps - 1) &^ (ps - 1)
}

// Region is an anonymous private mapping.
type Region struct {
	data []byte
}

// Map creates a read-write region of at least size bytes, rounded up to a
// whole number of pages.
func Map(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mem: invalid mapping size %d", size)
	}
	data, err := unix.Mmap(-1, 0, RoundUp(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mem: mmap %d bytes: %w", size, err)
	}
	return &Region{data: data}, nil
}

// Bytes returns the mapped memory. The slice is invalid after Unmap.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the mapped length in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Decommit tells the OS to drop the backing pages. The next touch sees
// fresh zero-filled pages.
func (r *Region) Decommit() error {
	if r.data == nil {
		return ErrUnmapped
	}
	if err := unix.Madvise(r.data, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("mem: madvise: %w", err)
	}
	return nil
}

// Protect changes the protection of n bytes starting at off. Both must be
// page aligned.
func (r *Region) Protect(off, n int, prot Prot) error {
	if r.data == nil {
		return ErrUnmapped
	}
	ps := PageSize()
	if off < 0 || n <= 0 || off%ps != 0 || n%ps != 0 || off+n > len(r.data) {
		return fmt.Errorf("mem: protect [%d, %d) outside region of %d bytes or not page aligned", off, off+n, len(r.data))
	}
	if err := unix.Mprotect(r.data[off:off+n], prot.unix()); err != nil {
		return fmt.Errorf("mem: mprotect: %w", err)
	}
	return nil
}

// Unmap releases the region. Calling it twice is a no-op.
func (r *Region) Unmap() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("mem: munmap: %w", err)
	}
	return nil
}
