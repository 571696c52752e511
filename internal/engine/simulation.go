package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/agents"
	"github.com/talgya/hamlet/internal/world"
)

// MaxEventLog bounds the in-memory tick event log.
const MaxEventLog = 2048

// DefaultMaxSteps is how many movement steps an agent may take per tick.
const DefaultMaxSteps = 3

// Event is one notable occurrence recorded during a tick.
type Event struct {
	Tick        uint64    `json:"tick"`
	Time        time.Time `json:"time"`
	Agent       string    `json:"agent"`
	Description string    `json:"description"`
}

// AgentSnapshot is a read-only view of an agent for observers.
type AgentSnapshot struct {
	Name        string      `json:"name"`
	Position    world.Coord `json:"position"`
	Status      string      `json:"status"`
	Action      string      `json:"action"`
	Address     string      `json:"address"`
	MemoryNodes int         `json:"memory_nodes"`
}

// Simulation holds the complete world state and advances every agent
// once per tick, in roster order, before world time moves. The
// simulation itself is single-threaded; the mutex only fences
// observer reads (API, websocket) against the active tick.
type Simulation struct {
	RunID uuid.UUID
	World *agents.World

	Perception *agents.Perception
	Planner    *agents.Planner
	Executor   *agents.Executor
	Reflector  *agents.Reflector

	MaxSteps int
	LastTick uint64

	startedAt time.Time

	mu     sync.RWMutex
	events []Event
}

// NewSimulation wires a simulation around a populated world.
func NewSimulation(w *agents.World, perception *agents.Perception, planner *agents.Planner, executor *agents.Executor, reflector *agents.Reflector) *Simulation {
	return &Simulation{
		RunID:      uuid.New(),
		World:      w,
		Perception: perception,
		Planner:    planner,
		Executor:   executor,
		Reflector:  reflector,
		MaxSteps:   DefaultMaxSteps,
		startedAt:  time.Now(),
	}
}

// TickMinute runs one simulation tick: each agent perceives, plans,
// acts, and reflects in turn; world time advances only after the whole
// roster has finished.
func (s *Simulation) TickMinute(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	w := s.World

	for _, a := range w.Agents {
		a.Short.Now = w.Now

		perceived := s.Perception.Perceive(a, w)
		retrieved := a.Retrieval.RetrieveContext(perceived, w.Now)

		s.Executor.CleanupExpired(a, w)

		plan := s.Planner.Plan(a, w, retrieved)
		status := s.Executor.Execute(a, w, s.MaxSteps)

		// Perceive again so the outcome of acting lands in memory this
		// tick rather than next.
		s.Perception.Perceive(a, w)

		insights := s.Reflector.Reflect(a, w.Now)

		s.record(tick, a.Name, fmt.Sprintf("%s (%s)", status, plan))
		if len(insights) > 0 {
			s.record(tick, a.Name, fmt.Sprintf("reflected: %d new thought(s)", len(insights)))
		}
		slog.Debug("agent tick",
			"agent", a.Name,
			"perceived", len(perceived),
			"plan", plan,
			"status", status,
		)
	}

	w.AdvanceTime(TickMinutes * time.Minute)
}

// TickHour logs an hourly heartbeat.
func (s *Simulation) TickHour(tick uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slog.Info("hour mark", "tick", tick, "sim_time", s.World.Now.Format("15:04"))
}

// TickDay emits the daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, a := range s.World.Agents {
		total += a.Memory.Len()
	}
	slog.Info("daily report",
		"run", s.RunID,
		"date", s.World.Date(),
		"agents", len(s.World.Agents),
		"memory_nodes", humanize.Comma(int64(total)),
		"started", humanize.Time(s.startedAt),
	)
}

// record appends a tick event. Caller must hold the write lock.
func (s *Simulation) record(tick uint64, agent, description string) {
	s.events = append(s.events, Event{
		Tick:        tick,
		Time:        s.World.Now,
		Agent:       agent,
		Description: description,
	})
	if len(s.events) > MaxEventLog {
		s.events = s.events[len(s.events)-MaxEventLog:]
	}
}

// RecentEvents returns up to n most recent tick events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}

// Snapshot returns observer views of every agent.
func (s *Simulation) Snapshot() []AgentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentSnapshot, 0, len(s.World.Agents))
	for _, a := range s.World.Agents {
		snap := AgentSnapshot{
			Name:        a.Name,
			Position:    a.Position,
			Status:      a.Status,
			MemoryNodes: a.Memory.Len(),
		}
		if act := a.Short.Action; act != nil {
			snap.Action = act.Description
			snap.Address = act.Address
		}
		out = append(out, snap)
	}
	return out
}

// SimTime returns the simulated time reached by a tick count from a
// given start.
func SimTime(start time.Time, tick uint64) time.Time {
	return start.Add(time.Duration(tick) * TickMinutes * time.Minute)
}
