package engine

import (
	"testing"
	"time"
)

func TestStepFiresTickEveryTime(t *testing.T) {
	e := NewEngine()
	ticks := 0
	e.OnTick = func(tick uint64) { ticks++ }

	now := time.Unix(0, 0)
	e.lastSample = now
	for i := 0; i < 10; i++ {
		e.step(now)
	}

	if ticks != 10 {
		t.Fatalf("OnTick fired %d times, want 10", ticks)
	}
	if e.CurrentTick() != 10 {
		t.Fatalf("tick counter = %d, want 10", e.CurrentTick())
	}
}

func TestSamplingFollowsWallClockNotTicks(t *testing.T) {
	e := NewEngine()
	e.SampleEvery = 250 * time.Millisecond
	samples := 0
	e.OnSample = func(tick uint64) { samples++ }

	start := time.Unix(0, 0)
	e.lastSample = start

	// 100 ticks over one simulated second: 4 sample windows.
	for i := 1; i <= 100; i++ {
		e.step(start.Add(time.Duration(i) * 10 * time.Millisecond))
	}

	if samples != 4 {
		t.Fatalf("OnSample fired %d times over 1s at 250ms cadence, want 4", samples)
	}
}

func TestStopEndsRun(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.OnTick = func(tick uint64) {
		if tick >= 3 {
			e.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if e.Running() {
		t.Fatal("Running still true after Stop")
	}
}

// Pacing state is adjusted from other goroutines (HTTP handler, websocket
// command loop) while Run is looping; the accessors must stay coherent.
func TestSpeedAdjustableWhileRunning(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.OnTick = func(tick uint64) {
		if tick == 2 {
			e.SetSpeed(0.5)
		}
		if tick >= 5 {
			e.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if got := e.Speed(); got != 0.5 {
		t.Fatalf("speed = %v, want 0.5", got)
	}
	if e.TPS() <= 0 {
		t.Fatalf("tps = %v, want positive after running", e.TPS())
	}
}
