//go:build !linux

package perf

// Group is a set of counters. Not available on this platform.
type Group struct{}

// Open always fails with ErrUnsupported.
func Open(events ...Event) (*Group, error) {
	return nil, ErrUnsupported
}

func (g *Group) Reset() error { return ErrUnsupported }
func (g *Group) Enable() error { return ErrUnsupported }
func (g *Group) Disable() error { return ErrUnsupported }
func (g *Group) Read() (Counts, error) { return nil, ErrUnsupported }
func (g *Group) Close() error { return nil }
