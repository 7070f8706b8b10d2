// Package engine provides the paced loop that drives the simulation.
// The core never advances itself; the engine invokes Population.Tick once
// per frame and Population.RecordStats on a wall-clock sampling cadence,
// so the history resolution is decoupled from the frame rate.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval caps the loop at 60 ticks per second.
const DefaultInterval = time.Second / 60

// DefaultSampleEvery is the statistics sampling cadence.
const DefaultSampleEvery = 250 * time.Millisecond

// Engine drives the simulation forward. Pacing state is mutex-fenced
// because the HTTP API, websocket command loop, and shutdown goroutine
// all touch it while Run is looping.
type Engine struct {
	Interval    time.Duration // Base tick interval
	SampleEvery time.Duration // Wall-clock cadence for OnSample

	// Callbacks — populated during setup, before Run.
	OnTick   func(tick uint64) // Every tick
	OnSample func(tick uint64) // Every SampleEvery of wall time

	mu      sync.RWMutex
	tick    uint64  // Current tick counter (monotonic, never resets)
	speed   float64 // Multiplier: 1.0 = full rate, 0 = paused
	running bool
	tps     float64 // Measured ticks per second, for the stats readout

	lastSample time.Time // Run-goroutine only
}

// NewEngine creates an engine with default pacing.
func NewEngine() *Engine {
	return &Engine{
		Interval:    DefaultInterval,
		SampleEvery: DefaultSampleEvery,
		speed:       1.0,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	e.lastSample = time.Now()
	slog.Info("simulation engine started", "tick", e.CurrentTick(), "speed", e.Speed())

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step(start)

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
			elapsed = target
		}
		e.mu.Lock()
		e.tps = 1.0 / elapsed.Seconds()
		e.mu.Unlock()
	}

	slog.Info("simulation engine stopped", "tick", e.CurrentTick())
}

// Stop halts the loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// CurrentTick returns the most recently processed tick number.
func (e *Engine) CurrentTick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// Speed returns the current pacing multiplier.
func (e *Engine) Speed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.speed
}

// SetSpeed changes the pacing multiplier. 0 pauses the loop.
func (e *Engine) SetSpeed(v float64) {
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
}

// TPS returns the measured ticks per second.
func (e *Engine) TPS() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tps
}

// step advances the simulation by one tick and fires the sampling callback
// when its wall-clock cadence has elapsed. Callbacks run without the lock
// held — they read engine state themselves.
func (e *Engine) step(now time.Time) {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}

	if now.Sub(e.lastSample) >= e.SampleEvery && e.OnSample != nil {
		e.lastSample = now
		e.OnSample(tick)
	}
}
