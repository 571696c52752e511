package agents

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/memory"
	"github.com/talgya/hamlet/internal/world"
)

// Planner decides what an agent does next: daily long-term planning,
// schedule-driven next actions, and reactions to perceived events.
// Every generation failure falls back to a named default.
type Planner struct {
	Gen      llm.Generator
	Embedder embedding.Embedder
	Chats    *ChatManager
	Identity *IdentityReviser
}

// NewPlanner wires a planner. Gen may be nil; planning then runs
// entirely on defaults.
func NewPlanner(gen llm.Generator, emb embedding.Embedder) *Planner {
	return &Planner{
		Gen:      gen,
		Embedder: emb,
		Chats:    NewChatManager(gen),
		Identity: NewIdentityReviser(gen, emb),
	}
}

// Plan runs one planning pass for the agent: long-term planning on a
// new day, a replacement action when the current one has expired, and a
// possible reaction to the most relevant retrieved bundle. Returns the
// resulting action address, or "idle".
func (p *Planner) Plan(a *Agent, w *World, retrieved map[string]memory.ContextBundle) string {
	if a.Short.NewDay {
		p.planDay(a, w)
	}

	a.Short.Now = w.Now
	action := a.Short.Action

	if action.IsFinished(w.Now) || action.StartTime.IsZero() {
		p.nextAction(a, w)
	}

	if bundle, ok := selectFocusedBundle(retrieved); ok {
		reaction := p.decideReaction(a, bundle)
		if reaction != "" && !strings.HasPrefix(strings.ToLower(reaction), "ignore") {
			p.applyReaction(a, w, bundle, reaction)
		}
	}

	if action.Event.Predicate != "chat with" {
		action.Chat.WithWhom = ""
		action.Chat.Log = nil
		action.Chat.EndTime = time.Time{}
	}

	// Cool-off countdown for everyone except the current partner.
	for name, left := range action.Chat.Buffer {
		if name != action.Chat.WithWhom && left > 0 {
			action.Chat.Buffer[name] = left - 1
		}
	}

	if action.Address == "" {
		return "idle"
	}
	return action.Address
}

// planDay builds the day's long-term plan: wake time, day blocks on the
// first day or an identity revision afterwards, the hourly schedule,
// and a plan thought in memory.
func (p *Planner) planDay(a *Agent, w *World) {
	slog.Info("daily planning", "agent", a.Name, "date", w.Date())

	wake := p.wakeTime(a)
	if a.Short.FirstDay {
		p.generateDayBlocks(a, w, wake)
	} else if err := p.Identity.Revise(a, w.Now); err != nil {
		slog.Warn("identity revision failed", "agent", a.Name, "error", err)
	}
	a.Short.Hourly = BuildHourlySchedule(a.Short.Blocks)

	var b strings.Builder
	fmt.Fprintf(&b, "This is %s's plan for %s:", a.Name, w.Date())
	for _, h := range a.Short.Hourly {
		fmt.Fprintf(&b, " %s - %s,", FormatClock(h.Hour*60), h.Task)
	}
	thought := strings.TrimSuffix(b.String(), ",") + "."

	var emb embedding.Vector
	if p.Embedder != nil {
		if v, err := p.Embedder.Embed(thought); err == nil {
			emb = v
		}
	}
	e := world.NewEvent(a.Name, "plan", w.Now.Format("Monday January 2"), thought)
	a.Memory.AddThought(e, 5.0, []string{"plan"}, emb, nil, w.Now)

	a.Short.FirstDay = false
	a.Short.NewDay = false
}

func (p *Planner) wakeTime(a *Agent) string {
	if p.Gen == nil {
		return "06:00"
	}
	raw, err := p.Gen.Generate(buildWakeTimePrompt(a), llm.Options{MaxTokens: 50, Stop: []string{"\n"}})
	if err != nil {
		slog.Debug("wake time defaulted", "agent", a.Name, "error", err)
		return "06:00"
	}
	if _, perr := ParseClock(raw); perr != nil {
		return "06:00"
	}
	return strings.TrimSpace(raw)
}

func (p *Planner) generateDayBlocks(a *Agent, w *World, wake string) {
	if p.Gen != nil {
		raw, err := p.Gen.Generate(buildDayBlocksPrompt(a, wake, w.Date()), llm.Options{MaxTokens: 300, Stop: []string{"</day_plan>"}})
		if err == nil {
			if blocks := ParseDayBlocks(raw); len(blocks) > 0 {
				a.Short.Blocks = blocks
				return
			}
		} else {
			slog.Debug("day block generation failed", "agent", a.Name, "error", err)
		}
	}
	a.Short.Blocks = defaultDayBlocks(wake)
}

// defaultDayBlocks is the offline fallback plan: wake, work, tavern
// evening, sleep.
func defaultDayBlocks(wake string) []DayBlock {
	start, err := ParseClock(wake)
	if err != nil {
		start = 6 * 60
	}
	return []DayBlock{
		{Start: start, End: 12 * 60, Task: "working through the morning"},
		{Start: 12 * 60, End: 13 * 60, Task: "eating a midday meal"},
		{Start: 13 * 60, End: 18 * 60, Task: "working through the afternoon"},
		{Start: 18 * 60, End: 21 * 60, Task: "spending the evening at the tavern"},
	}
}

// nextAction replaces the expired action with the scheduled task,
// narrowing the target location sector → arena → object through the
// agent's spatial memory.
func (p *Planner) nextAction(a *Agent, w *World) {
	task, remaining := a.CurrentTask(w.Now)

	currentSector := ""
	if s, err := w.Grid.Sector(a.Position); err == nil {
		currentSector = s
	}
	sector := p.pickPlace(a, "sector", task, a.Spatial.Sectors(w.Name), currentSector)

	currentArena := lastSegment(tilePathOr(w, a.Position, world.LevelArena))
	arena := p.pickPlace(a, "arena", task, a.Spatial.Arenas(w.Name, sector), currentArena)

	currentObject := lastSegment(tilePathOr(w, a.Position, world.LevelGameObject))
	object := p.pickPlace(a, "object", task, a.Spatial.Objects(w.Name, sector, arena), currentObject)

	address := fmt.Sprintf("%s:%s:%s:%s", w.Name, sector, arena, object)
	duration := min(60, max(5, remaining))

	event := p.eventForTask(a, task)

	action := a.Short.Action
	action.Description = task
	action.Event = event
	action.Address = address
	action.Duration = duration
	action.Path = PathPlan{}
	action.Start(w.Now)

	p.generateObjectInteraction(a, object, task)
	p.generateSubtasks(a, w, task, duration)

	slog.Info("planned action", "agent", a.Name, "task", task, "address", address, "minutes", duration)
}

func (p *Planner) pickPlace(a *Agent, level, task string, options []string, current string) string {
	if p.Gen == nil || len(options) == 0 {
		return PickOption("", options, current)
	}
	raw, err := p.Gen.Generate(buildPlacePrompt(a, level, task, options, current), llm.Options{MaxTokens: 32, Stop: []string{"\n"}})
	if err != nil {
		slog.Debug("place choice defaulted", "agent", a.Name, "level", level, "error", err)
		raw = ""
	}
	return PickOption(raw, options, current)
}

// eventForTask turns a task description into a semantic triple, with
// "is <task>" as the fallback.
func (p *Planner) eventForTask(a *Agent, task string) world.Event {
	if p.Gen != nil {
		raw, err := p.Gen.Generate(buildEventTriplePrompt(a, task), llm.Options{MaxTokens: 200, Stop: []string{"</event>"}})
		if err == nil {
			if triples := ParseEventTriples(raw); len(triples) > 0 {
				t := triples[0]
				return world.NewEvent(t[0], t[1], t[2], task)
			}
		} else {
			slog.Debug("event triple generation failed", "agent", a.Name, "error", err)
		}
	}
	return world.NewEvent(a.Name, "is", task, task)
}

func (p *Planner) generateObjectInteraction(a *Agent, object, task string) {
	if p.Gen == nil {
		return
	}
	raw, err := p.Gen.Generate(buildObjectInteractionPrompt(a, object, task), llm.Options{MaxTokens: 80, Stop: []string{"\n"}})
	if err != nil || strings.TrimSpace(raw) == "" {
		return
	}
	desc := strings.TrimSpace(raw)
	a.Short.Action.ObjectInteraction.Description = desc
	if triples := ParseEventTriples(desc); len(triples) > 0 {
		t := triples[0]
		a.Short.Action.ObjectInteraction.Event = world.NewEvent(t[0], t[1], t[2], desc)
	}
}

func (p *Planner) generateSubtasks(a *Agent, w *World, task string, duration int) {
	if p.Gen == nil {
		return
	}
	summary := fmt.Sprintf("From %s for %d minutes, %s is %s.", w.Now.Format("15:04"), duration, a.Name, task)
	raw, err := p.Gen.Generate(buildMicrotasksPrompt(a, summary), llm.Options{MaxTokens: 500, Stop: []string{"</microtasks>"}})
	if err != nil {
		slog.Debug("microtasks not generated", "agent", a.Name, "error", err)
		return
	}
	a.Short.Action.Subtasks = ParseMicrotasks(raw)
}

// selectFocusedBundle picks the retrieved bundle with the highest
// average context-node relevance.
func selectFocusedBundle(retrieved map[string]memory.ContextBundle) (memory.ContextBundle, bool) {
	var best memory.ContextBundle
	bestScore := -1.0
	found := false
	for _, bundle := range retrieved {
		if bundle.CurrentEvent.IsZero() {
			continue
		}
		score := 0.0
		if len(bundle.ContextNodes) > 0 {
			for _, n := range bundle.ContextNodes {
				score += n.Relevance
			}
			score /= float64(len(bundle.ContextNodes))
		}
		if score > bestScore {
			bestScore = score
			best = bundle
			found = true
		}
	}
	return best, found
}

// decideReaction asks whether the agent reacts to the focused event.
// Guardrails: no reactions late at night, while sleeping, or while
// already chatting. Empty string means no reaction.
func (p *Planner) decideReaction(a *Agent, bundle memory.ContextBundle) string {
	if p.Gen == nil {
		return ""
	}
	now := a.Short.Now
	desc := strings.ToLower(a.Short.Action.Description)
	if now.Hour() >= 23 {
		return ""
	}
	if strings.Contains(desc, "sleep") || strings.Contains(desc, "in bed") {
		return ""
	}
	if a.Short.Action.Chat.WithWhom != "" {
		return ""
	}

	memories := make([]string, 0, len(bundle.ContextNodes))
	for _, n := range bundle.ContextNodes {
		memories = append(memories, n.Event.Description)
	}

	raw, err := p.Gen.Generate(buildReactionPrompt(a, bundle.CurrentEvent, memories),
		llm.Options{MaxTokens: 50, Stop: []string{"\n", "</reaction>"}})
	if err != nil {
		slog.Debug("reaction decision failed", "agent", a.Name, "error", err)
		return ""
	}
	return strings.TrimSpace(raw)
}

// applyReaction replaces the current action per the reaction directive.
// Unknown directives keep the current plan.
func (p *Planner) applyReaction(a *Agent, w *World, bundle memory.ContextBundle, reaction string) {
	slog.Info("applying reaction", "agent", a.Name, "reaction", reaction)
	event := bundle.CurrentEvent
	now := w.Now
	action := a.Short.Action

	// Drop the old action's lingering tile event before switching.
	if err := w.Grid.RemoveEvent(a.Position.X, a.Position.Y, action.Event); err != nil {
		slog.Debug("stale event removal failed", "agent", a.Name, "error", err)
	}

	mode := strings.ToLower(reaction)
	switch {
	case strings.HasPrefix(mode, "chat with"):
		target := orDefault(event.Object, "someone")
		if action.Chat.Buffer[target] > 0 {
			slog.Debug("chat suppressed by cool-off", "agent", a.Name, "with", target)
			return
		}
		convo := p.Chats.GenerateConversation(a, target)
		summary := p.Chats.SummarizeConversation(a, convo)
		turns := max(1, len(convo))
		minutes := max(5, min(20, (turns+1)/2))

		action.Chat.WithWhom = target
		action.Chat.Log = convo

		// The executor starts the timer on arrival.
		action.Description = "heading to chat with " + target
		action.Event = world.NewEvent(a.Name, "chat with", target, summary)
		action.Duration = minutes
		action.Path = PathPlan{}
		action.Start(now)

	case strings.HasPrefix(mode, "wait"):
		action.Description = "waiting quietly"
		action.Event = world.NewEvent(a.Name, "is", "waiting", "The agent decides to wait quietly.")
		action.Duration = 10
		action.Path = PathPlan{}
		action.Start(now)

	case strings.HasPrefix(mode, "move to"):
		location := strings.TrimSpace(reaction[len("move to"):])
		if location == "" {
			location = "somewhere"
		}
		action.Description = "moving to " + location
		action.Event = world.NewEvent(a.Name, "move to", location, fmt.Sprintf("%s heads toward %s.", a.Name, location))
		action.Duration = 15
		action.Address = location
		action.Path = PathPlan{}
		action.Start(now)

	case strings.HasPrefix(mode, "observe"):
		target := orDefault(event.Object, "surroundings")
		action.Description = "observing " + target
		action.Event = world.NewEvent(a.Name, "observe", target, fmt.Sprintf("%s watches %s closely.", a.Name, target))
		action.Duration = 5
		action.Path = PathPlan{}
		action.Start(now)

	case strings.HasPrefix(mode, "help"):
		target := orDefault(event.Object, "someone")
		action.Description = "helping " + target
		action.Event = world.NewEvent(a.Name, "help", target, fmt.Sprintf("%s offers help to %s.", a.Name, target))
		action.Duration = 10
		action.Path = PathPlan{}
		action.Start(now)

	case strings.HasPrefix(mode, "follow"):
		target := orDefault(event.Object, "someone")
		action.Description = "following " + target
		action.Event = world.NewEvent(a.Name, "follow", target, fmt.Sprintf("%s quietly follows %s.", a.Name, target))
		action.Duration = 10
		action.Path = PathPlan{}
		action.Start(now)

	default:
		slog.Info("unhandled reaction, keeping plan", "agent", a.Name, "reaction", reaction)
	}
}

func tilePathOr(w *World, pos world.Coord, level string) string {
	path, err := w.Grid.TilePath(pos, level)
	if err != nil {
		return ""
	}
	return path
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, ":"); i >= 0 {
		return path[i+1:]
	}
	return path
}
