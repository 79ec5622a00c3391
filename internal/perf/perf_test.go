package perf

import (
	"runtime"
	"testing"
)

func TestEventString(t *testing.T) {
	for e, want := range map[Event]string{
		CacheReferences: "cache-references",
		CacheMisses:     "cache-misses",
		BranchMisses:    "branch-misses",
		Event(99):       "unknown",
	} {
		if got := e.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", e, got, want)
		}
	}
}

// TestOpenReadClose exercises the counter lifecycle where the kernel allows it.
func TestOpenReadClose(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	g, err := Open(CacheReferences, CacheMisses, BranchMisses)
	if err != nil {
		t.Skipf("hardware counters unavailable: %v", err)
	}
	defer g.Close()

	if err := g.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := g.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	buf := make([]byte, 1<<20)
	for i := range buf {
		buf[i] = byte(i)
	}
	if err := g.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}

	counts, err := g.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("Expected 3 counts, got %d", len(counts))
	}
	for e, v := range counts {
		t.Logf("  %s: %d", e, v)
	}
}
