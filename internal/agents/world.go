package agents

import (
	"fmt"
	"math"
	"time"

	"github.com/talgya/hamlet/internal/world"
)

// World bundles the grid with the agent roster and the simulated clock.
// Time only advances through AdvanceTime, once per tick after every
// agent has acted, so agents within a tick share a consistent view.
type World struct {
	Name        string
	Description string
	Grid        *world.Grid
	Agents      []*Agent
	Now         time.Time
	Weather     string
}

// NewWorld wraps a grid with an empty roster starting at the given
// simulated time.
func NewWorld(description string, g *world.Grid, start time.Time) *World {
	return &World{
		Name:        g.WorldName(),
		Description: description,
		Grid:        g,
		Now:         start,
		Weather:     "sunny",
	}
}

// AddAgent places an agent on the roster. The spawn tile must exist and
// be walkable.
func (w *World) AddAgent(a *Agent) error {
	if !w.Grid.InBounds(a.Position.X, a.Position.Y) {
		return fmt.Errorf("agent %s: spawn %s is out of bounds", a.Name, a.Position)
	}
	if w.Grid.IsCollidable(a.Position.X, a.Position.Y) {
		return fmt.Errorf("agent %s: spawn %s is collidable", a.Name, a.Position)
	}
	a.Short.Now = w.Now
	w.Agents = append(w.Agents, a)
	return nil
}

// AgentByName finds an agent on the roster, or nil.
func (w *World) AgentByName(name string) *Agent {
	for _, a := range w.Agents {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// NearestOther returns the closest other agent, or nil when alone.
func (w *World) NearestOther(a *Agent) *Agent {
	var nearest *Agent
	best := math.Inf(1)
	for _, other := range w.Agents {
		if other == a {
			continue
		}
		if d := Distance(a.Position, other.Position); d < best {
			best = d
			nearest = other
		}
	}
	return nearest
}

// Distance is the Euclidean distance between two positions.
func Distance(p, q world.Coord) float64 {
	return math.Sqrt(float64(p.DistSq(q)))
}

// Date renders the current simulated date for prompts.
func (w *World) Date() string {
	return w.Now.Format("Monday, January 2")
}

// AdvanceTime moves the simulated clock. Crossing midnight marks every
// agent's new-day flag so the next plan run does long-term planning.
func (w *World) AdvanceTime(step time.Duration) {
	prev := w.Now
	w.Now = w.Now.Add(step)
	if prev.Day() != w.Now.Day() {
		for _, a := range w.Agents {
			a.Short.NewDay = true
		}
	}
}
