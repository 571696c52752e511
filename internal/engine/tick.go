// Package engine provides the tick-based simulation loop.
package engine

import (
	"log/slog"
	"time"
)

// One tick advances the simulated clock by TickMinutes.
const (
	TickMinutes  = 5
	TicksPerDay  = 24 * 60 / TickMinutes
	TicksPerHour = 60 / TickMinutes
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // current tick counter, monotonic
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval
	Running  bool

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64)
	OnHour func(tick uint64)
	OnDay  func(tick uint64)
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the simulation loop. Blocks until Stop is called or
// maxTicks is reached (0 means unbounded).
func (e *Engine) Run(maxTicks uint64) {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if maxTicks > 0 && e.Tick >= maxTicks {
			break
		}
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.Running = false
	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.Tick%TicksPerHour == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if e.Tick%TicksPerDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
}
