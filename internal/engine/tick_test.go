package engine

import "testing"

func TestEngineTickCadence(t *testing.T) {
	e := NewEngine()
	e.Interval = 0 // run flat out

	var ticks, hours, days []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnHour = func(tick uint64) { hours = append(hours, tick) }
	e.OnDay = func(tick uint64) { days = append(days, tick) }

	e.Run(TicksPerDay)

	if len(ticks) != TicksPerDay {
		t.Fatalf("ticks=%d want=%d", len(ticks), TicksPerDay)
	}
	if len(hours) != 24 {
		t.Fatalf("hour callbacks=%d want=24", len(hours))
	}
	if hours[0] != TicksPerHour {
		t.Fatalf("first hour at tick %d want %d", hours[0], TicksPerHour)
	}
	if len(days) != 1 || days[0] != TicksPerDay {
		t.Fatalf("day callbacks=%v want=[%d]", days, TicksPerDay)
	}
	if e.Running {
		t.Fatal("engine still marked running after Run returned")
	}
}

func TestEngineRunsUnboundedUntilStopped(t *testing.T) {
	e := NewEngine()
	e.Interval = 0

	e.OnTick = func(tick uint64) {
		if tick >= 10 {
			e.Stop()
		}
	}
	e.Run(0)

	if e.Tick != 10 {
		t.Fatalf("Tick=%d want=10", e.Tick)
	}
}
