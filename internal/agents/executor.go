package agents

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/world"
)

// Executor advances an agent's current action: resolves a target tile,
// plans a path, steps the agent along it carrying the action's event
// between tiles, and handles arrival (chat timers, microtasks).
type Executor struct {
	Embedder embedding.Embedder
	Rng      *rand.Rand
}

// NewExecutor creates an executor. A nil rng gets a time-seeded one.
func NewExecutor(emb embedding.Embedder, rng *rand.Rand) *Executor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Executor{Embedder: emb, Rng: rng}
}

// Execute advances the agent along its current action by up to maxSteps
// movement steps and returns a concise status string.
func (ex *Executor) Execute(a *Agent, w *World, maxSteps int) string {
	a.Short.Now = w.Now
	action := a.Short.Action

	if action == nil || action.Event.IsZero() {
		return "idle"
	}

	ex.attachEvent(a, w)

	if strings.EqualFold(action.Event.Object, "waiting") {
		return "waiting"
	}

	if !action.Path.IsSet {
		target, ok := ex.selectTarget(a, w)
		if !ok {
			slog.Warn("no reachable target", "agent", a.Name, "address", action.Address)
			return "no target"
		}
		path := world.FindPath(w.Grid, a.Position, target)
		action.Path.Steps = path[1:]
		action.Path.IsSet = true
		slog.Debug("planned path", "agent", a.Name, "steps", len(action.Path.Steps))
	}

	steps := 0
	for steps < maxSteps && len(action.Path.Steps) > 0 {
		next := action.Path.Steps[0]
		action.Path.Steps = action.Path.Steps[1:]
		prev := a.Position
		a.Position = next
		ex.moveEvent(w, prev, next, action.Event)
		steps++
	}

	if len(action.Path.Steps) == 0 {
		ex.onArrival(a, w)
	}

	if strings.EqualFold(action.Event.Predicate, "chat with") {
		if !action.Chat.EndTime.IsZero() && w.Now.Before(action.Chat.EndTime) {
			return "chatting with " + orDefault(action.Chat.WithWhom, "someone")
		}
		return "moving to " + orDefault(action.Event.Object, "someone") + " to chat"
	}

	if steps > 0 {
		return fmt.Sprintf("moved %d step(s)", steps)
	}
	return "at destination"
}

// CleanupExpired clears a finished action's world footprint: removes
// its event from the agent's tile, drops the path, and resets chat
// state. Safe to call repeatedly.
func (ex *Executor) CleanupExpired(a *Agent, w *World) bool {
	action := a.Short.Action
	if action == nil || !action.IsFinished(w.Now) {
		return false
	}

	// Best effort; the next attach restores consistency.
	if err := w.Grid.RemoveEvent(a.Position.X, a.Position.Y, action.Event); err != nil {
		slog.Debug("cleanup event removal failed", "agent", a.Name, "error", err)
	}

	action.Path.Steps = nil
	action.Path.IsSet = false
	action.Chat.WithWhom = ""
	action.Chat.Log = nil
	action.Chat.EndTime = time.Time{}
	return true
}

// attachEvent idempotently places the action's event on the agent's
// current tile so others can perceive it.
func (ex *Executor) attachEvent(a *Agent, w *World) {
	t, err := w.Grid.Tile(a.Position.X, a.Position.Y)
	if err != nil {
		slog.Debug("could not attach event", "agent", a.Name, "error", err)
		return
	}
	e := a.Short.Action.Event
	if !t.HasEvent(e) {
		t.AddEvent(e)
	}
}

// moveEvent carries the action's event from the previous tile to the
// current one. Both halves are best effort.
func (ex *Executor) moveEvent(w *World, prev, curr world.Coord, e world.Event) {
	if err := w.Grid.RemoveEvent(prev.X, prev.Y, e); err != nil {
		slog.Debug("event removal on move failed", "error", err)
	}
	if err := w.Grid.AddEvent(curr.X, curr.Y, e); err != nil {
		slog.Debug("event add on move failed", "error", err)
	}
}

// selectTarget resolves the action's address to a concrete tile through
// an ordered fallback chain: explicit waiting coordinates, a random
// nearby tile, a living agent named by the event, then the address
// index with progressively looser wildcard matching.
func (ex *Executor) selectTarget(a *Agent, w *World) (world.Coord, bool) {
	action := a.Short.Action
	address := action.Address
	g := w.Grid

	if strings.Contains(address, "<waiting>") {
		if pos, ok := parseWaitingCoord(address); ok && g.InBounds(pos.X, pos.Y) && !g.IsCollidable(pos.X, pos.Y) {
			return pos, true
		}
		return a.Position, true
	}

	if strings.Contains(address, "<random>") {
		if pos, ok := ex.randomNearby(a, g); ok {
			return pos, true
		}
		return a.Position, true
	}

	if obj := action.Event.Object; obj != "" {
		for _, other := range w.Agents {
			if other != a && other.Name == obj {
				return other.Position, true
			}
		}
	}

	if address != "" && !strings.Contains(address, ":") {
		if pos, ok := ex.randomNearby(a, g); ok {
			return pos, true
		}
	}

	candidates := g.PositionsByAddress(address)
	if len(candidates) == 0 {
		parts := strings.Split(address, ":")
		var sector, arena, object string
		if len(parts) > 1 {
			sector = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			arena = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			object = strings.TrimSpace(parts[3])
		}
		if sector != "" || arena != "" || object != "" {
			candidates = g.FindPositions(sector, arena, object, true)
		}
		if len(candidates) == 0 && sector != "" && arena != "" {
			candidates = g.FindPositions(sector, arena, "", false)
		}
		if len(candidates) == 0 && sector != "" {
			candidates = g.FindPositions(sector, "", "", false)
		}
	}

	if len(candidates) == 0 {
		return world.Coord{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if a.Position.DistSq(c) < a.Position.DistSq(best) {
			best = c
		}
	}

	// A collidable best candidate (a wall, a piece of furniture) gets
	// swapped for a walkable neighbor in the same room when one exists.
	if g.IsCollidable(best.X, best.Y) {
		if t, err := g.Tile(best.X, best.Y); err == nil {
			for _, n := range best.Neighbors4() {
				if !g.InBounds(n.X, n.Y) || g.IsCollidable(n.X, n.Y) {
					continue
				}
				nt, err := g.Tile(n.X, n.Y)
				if err != nil {
					continue
				}
				if nt.Sector == t.Sector && nt.Arena == t.Arena {
					return n, true
				}
			}
		}
	}

	return best, true
}

func (ex *Executor) randomNearby(a *Agent, g *world.Grid) (world.Coord, bool) {
	nearby := g.NearbyPositions(a.Position, a.VisionRange)
	var options []world.Coord
	for _, pos := range nearby {
		if !g.IsCollidable(pos.X, pos.Y) {
			options = append(options, pos)
		}
	}
	if len(options) == 0 {
		return world.Coord{}, false
	}
	return options[ex.Rng.Intn(len(options))], true
}

// parseWaitingCoord reads "<waiting> x y" out of an address.
func parseWaitingCoord(address string) (world.Coord, bool) {
	parts := strings.Fields(address)
	for i, p := range parts {
		if p != "<waiting>" || i+2 >= len(parts) {
			continue
		}
		x, err1 := strconv.Atoi(parts[i+1])
		y, err2 := strconv.Atoi(parts[i+2])
		if err1 != nil || err2 != nil {
			return world.Coord{}, false
		}
		return world.Coord{X: x, Y: y}, true
	}
	return world.Coord{}, false
}

// onArrival handles path exhaustion: re-attach the event, start the
// chat timer for chat actions, and log one pending microtask as a
// memory event.
func (ex *Executor) onArrival(a *Agent, w *World) {
	action := a.Short.Action
	ex.attachEvent(a, w)

	if strings.EqualFold(action.Event.Predicate, "chat with") && action.Chat.EndTime.IsZero() {
		target := orDefault(action.Event.Object, "someone")
		if action.Chat.WithWhom == "" {
			action.Chat.WithWhom = target
		}
		minutes := action.Duration
		if minutes <= 0 {
			minutes = 10
		}
		minutes = max(5, minutes)
		action.Chat.EndTime = w.Now.Add(time.Duration(minutes) * time.Minute)
		if action.Chat.Buffer == nil {
			action.Chat.Buffer = make(map[string]int)
		}
		action.Chat.Buffer[target] = max(5, minutes/2)
		action.Description = "chatting with " + target
		slog.Debug("started chat", "agent", a.Name, "with", target, "minutes", minutes)
	}

	if len(action.Subtasks) > 0 {
		sub := action.Subtasks[0]
		action.Subtasks = action.Subtasks[1:]
		desc := fmt.Sprintf("%s %s.", a.Name, sub)
		evt := world.NewEvent(a.Name, "does", sub, desc)

		var emb embedding.Vector
		if ex.Embedder != nil {
			if v, err := ex.Embedder.Embed(desc); err == nil {
				emb = v
			}
		}
		a.Memory.AddEvent(evt, 5.0, []string{a.Name, "does", sub}, emb, nil, w.Now)
		slog.Debug("logged subtask", "agent", a.Name, "subtask", sub)
	}
}
