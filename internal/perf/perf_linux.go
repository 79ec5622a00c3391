//go:build linux

package perf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

func (e Event) config() (uint64, error) {
	switch e {
	case CacheReferences:
		return unix.PERF_COUNT_HW_CACHE_REFERENCES, nil
	case CacheMisses:
		return unix.PERF_COUNT_HW_CACHE_MISSES, nil
	case BranchMisses:
		return unix.PERF_COUNT_HW_BRANCH_MISSES, nil
	default:
		return 0, fmt.Errorf("perf: unknown event %d", e)
	}
}

// Group is a set of counters bound to the calling thread. Callers should
// hold runtime.LockOSThread while the group is open.
type Group struct {
	events []Event
	fds    []int
}

// Open creates one disabled user-space counter per event for the calling
// thread on any CPU.
func Open(events ...Event) (*Group, error) {
	g := &Group{}
	for _, e := range events {
		cfg, err := e.config()
		if err != nil {
			g.Close()
			return nil, err
		}
		attr := unix.PerfEventAttr{
			Type:   unix.PERF_TYPE_HARDWARE,
			Config: cfg,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		attr.Size = uint32(unsafe.Sizeof(attr))

		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("perf: open %s: %w", e, err)
		}
		g.events = append(g.events, e)
		g.fds = append(g.fds, fd)
	}
	return g, nil
}

func (g *Group) ioctl(req uint) error {
	for i, fd := range g.fds {
		if err := unix.IoctlSetInt(fd, req, 0); err != nil {
			return fmt.Errorf("perf: ioctl %s: %w", g.events[i], err)
		}
	}
	return nil
}

// Reset zeroes every counter.
func (g *Group) Reset() error { return g.ioctl(unix.PERF_EVENT_IOC_RESET) }

// Enable starts counting.
func (g *Group) Enable() error { return g.ioctl(unix.PERF_EVENT_IOC_ENABLE) }

// Disable stops counting.
func (g *Group) Disable() error { return g.ioctl(unix.PERF_EVENT_IOC_DISABLE) }

// Read returns the current counter values.
func (g *Group) Read() (Counts, error) {
	counts := make(Counts, len(g.fds))
	var buf [8]byte
	for i, fd := range g.fds {
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			return nil, fmt.Errorf("perf: read %s: %w", g.events[i], err)
		}
		if n != len(buf) {
			return nil, fmt.Errorf("perf: short read of %s: %d bytes", g.events[i], n)
		}
		counts[g.events[i]] = binary.NativeEndian.Uint64(buf[:])
	}
	return counts, nil
}

// Close releases every counter.
func (g *Group) Close() error {
	var errs []error
	for _, fd := range g.fds {
		if err := unix.Close(fd); err != nil {
			errs = append(errs, err)
		}
	}
	g.fds, g.events = nil, nil
	return errors.Join(errs...)
}
