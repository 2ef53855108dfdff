// Package engine provides the tick-based simulation loop.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward at a fixed cadence. The loop runs on
// a single goroutine; everything the callbacks mutate is owned by that
// goroutine. Stop may be called from any goroutine.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval

	running atomic.Bool

	// OnTick runs every tick with the new tick number.
	OnTick func(tick uint64)
}

// NewEngine creates a simulation engine with default settings.
func NewEngine(interval time.Duration) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: interval,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.running.Load() {
		if e.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop. Safe from any goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

func (e *Engine) step() {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}
