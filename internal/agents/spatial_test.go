package agents

import (
	"reflect"
	"testing"
	"time"

	"github.com/talgya/hamlet/internal/world"
)

func TestSpatialMemoryObserve(t *testing.T) {
	m := NewSpatialMemory()
	m.Observe("Greenhollow", "Tavern", "Tavern Hall", "bar")
	m.Observe("Greenhollow", "Tavern", "Tavern Hall", "bar") // dedup
	m.Observe("Greenhollow", "Tavern", "Tavern Hall", "hearth")
	m.Observe("Greenhollow", "Tavern", "Cellar", "")
	m.Observe("Greenhollow", "Farm", "Field", "wheat")
	m.Observe("Greenhollow", "", "Nowhere", "x") // empty sector ignored
	m.Observe("Greenhollow", "Forest", "", "x")  // empty arena ignored

	if got := m.Sectors("Greenhollow"); !reflect.DeepEqual(got, []string{"Farm", "Tavern"}) {
		t.Fatalf("Sectors=%v", got)
	}
	if got := m.Arenas("Greenhollow", "Tavern"); !reflect.DeepEqual(got, []string{"Cellar", "Tavern Hall"}) {
		t.Fatalf("Arenas=%v", got)
	}
	// Objects stay in observation order, not sorted.
	if got := m.Objects("Greenhollow", "Tavern", "Tavern Hall"); !reflect.DeepEqual(got, []string{"bar", "hearth"}) {
		t.Fatalf("Objects=%v", got)
	}
	if !m.KnowsArena("Greenhollow", "Tavern", "Cellar") {
		t.Fatal("arena observed without object not known")
	}
	if m.KnowsArena("Greenhollow", "Forest", "Clearing") {
		t.Fatal("never-seen arena reported known")
	}
}

func TestCurrentTask(t *testing.T) {
	a := NewAgent("Thomas", 30, "steady", "works all day", world.Coord{}, nil)
	a.Short.Blocks = []DayBlock{
		{Start: 360, End: 720, Task: "field work"},
		{Start: 720, End: 780, Task: "lunch"},
	}

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	task, left := a.CurrentTask(day.Add(7 * time.Hour))
	if task != "field work" || left != 300 {
		t.Fatalf("07:00: task=%q left=%d", task, left)
	}
	// Block boundaries are half-open: the end minute belongs to the next block.
	task, _ = a.CurrentTask(day.Add(12 * time.Hour))
	if task != "lunch" {
		t.Fatalf("12:00: task=%q want lunch", task)
	}
	task, left = a.CurrentTask(day.Add(3 * time.Hour))
	if task != "idle" || left != 30 {
		t.Fatalf("uncovered hour: task=%q left=%d", task, left)
	}
}
