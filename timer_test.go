package ctmemcmp

import (
	"testing"
	"time"
)

// TestTimerWorks verifies the platform timer is functional.
func TestTimerWorks(t *testing.T) {
	name := TimerName()
	if name == "" {
		t.Fatal("Timer name is empty")
	}
	t.Logf("Timer: %s", name)

	freq := TimerFrequency()
	if freq == 0 {
		t.Fatal("Timer frequency is zero")
	}
	t.Logf("Frequency: %d Hz", freq)

	res := TimerResolutionNs()
	if res <= 0 {
		t.Fatal("Timer resolution is invalid")
	}
	t.Logf("Resolution: %.2f ns", res)

	// Read timer twice and verify it advances
	t1 := ReadTimer()
	time.Sleep(1 * time.Millisecond)
	t2 := ReadTimer()
	if t2 <= t1 {
		t.Fatalf("Timer did not advance: t1=%d, t2=%d", t1, t2)
	}
	t.Logf("Timer delta over 1ms: %d ticks", t2-t1)
}

func TestTicksToDuration(t *testing.T) {
	if d := TicksToDuration(0); d != 0 {
		t.Fatalf("TicksToDuration(0) = %v", d)
	}

	f := TimerFrequency()
	d := TicksToDuration(f)
	t.Logf("%d ticks = %v", f, d)
	if d < 999*time.Millisecond || d > 1001*time.Millisecond {
		t.Fatalf("one second of ticks converted to %v", d)
	}
}

// TestTimerAgreesWithWallClock checks the tick rate against time.Now.
func TestTimerAgreesWithWallClock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping clock comparison in short mode")
	}

	t0, c0 := time.Now(), ReadTimer()
	time.Sleep(20 * time.Millisecond)
	c1, wall := ReadTimer(), time.Since(t0)

	got := TicksToDuration(c1 - c0)
	t.Logf("wall=%v timer=%v", wall, got)
	if ratio := float64(got) / float64(wall); ratio < 0.8 || ratio > 1.2 {
		t.Fatalf("timer/wall ratio %.3f outside [0.8, 1.2]", ratio)
	}
}
