package engine

import (
	"log/slog"
	"time"
)

// Cadence of each callback layer relative to the base tick (1 second).
const (
	TicksPerMinute = 60
	TicksPerHour   = 3600
	TicksPerDay    = 86400
)

// Ticker drives the engine on a fixed wall-clock cadence. Callbacks
// receive the same now value, layered from fastest to slowest.
type Ticker struct {
	Tick     uint64        // monotonic tick counter, never resets
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval (default 1 second)
	Running  bool

	OnSecond func(now time.Time) // every tick: settle elapsed jobs
	OnMinute func(now time.Time) // payroll
	OnHour   func(now time.Time) // market fluctuation
	OnDay    func(now time.Time) // dividends, full save
}

// NewTicker creates a ticker with default settings.
func NewTicker() *Ticker {
	return &Ticker{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the tick loop. Blocks until Stop() is called.
func (t *Ticker) Run() {
	t.Running = true
	slog.Info("tick loop started", "tick", t.Tick, "speed", t.Speed)

	for t.Running {
		if t.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		t.Step(start)

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(t.Interval) / t.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("tick loop stopped", "tick", t.Tick)
}

// Stop halts the tick loop.
func (t *Ticker) Stop() {
	t.Running = false
}

// Step advances the schedule by one tick. Exported so tests can drive
// the schedule with an explicit clock instead of sleeping.
func (t *Ticker) Step(now time.Time) {
	t.Tick++

	if t.OnSecond != nil {
		t.OnSecond(now)
	}
	if t.Tick%TicksPerMinute == 0 && t.OnMinute != nil {
		t.OnMinute(now)
	}
	if t.Tick%TicksPerHour == 0 && t.OnHour != nil {
		t.OnHour(now)
	}
	if t.Tick%TicksPerDay == 0 && t.OnDay != nil {
		t.OnDay(now)
	}
}
