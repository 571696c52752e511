package agents

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/memory"
	"github.com/talgya/hamlet/internal/world"
)

// Perception turns the tiles around an agent into memory: spatial map
// updates, percept event nodes scored for significance, and self-chat
// capture.
type Perception struct {
	Gen      llm.Generator
	Embedder embedding.Embedder
}

// NewPerception wires a perception stage. Gen may be nil; significance
// then defaults to 1.0.
func NewPerception(gen llm.Generator, emb embedding.Embedder) *Perception {
	return &Perception{Gen: gen, Embedder: emb}
}

// Perceive scans the agent's surroundings and returns the memory nodes
// created this tick.
func (p *Perception) Perceive(a *Agent, w *World) []*memory.Node {
	nearby := w.Grid.NearbyPositions(a.Position, a.VisionRange)
	p.storeSpatial(a, w, nearby)

	events := p.gatherEvents(a, w, nearby)

	var nodes []*memory.Node
	chatNode := p.processSelfChat(a, w, events)
	if chatNode != nil {
		nodes = append(nodes, chatNode)
	}
	nodes = append(nodes, p.storePercepts(a, w, events, chatNode)...)
	return nodes
}

func (p *Perception) storeSpatial(a *Agent, w *World, positions []world.Coord) {
	for _, pos := range positions {
		t, err := w.Grid.Tile(pos.X, pos.Y)
		if err != nil {
			continue
		}
		a.Spatial.Observe(w.Name, t.Sector, t.Arena, t.GameObject)
	}
}

// gatherEvents collects the events on same-arena tiles within vision,
// deduplicated by triple, nearest first, capped at the agent's
// attention bandwidth.
func (p *Perception) gatherEvents(a *Agent, w *World, positions []world.Coord) []world.Event {
	currentArena, err := w.Grid.TilePath(a.Position, world.LevelArena)
	if err != nil {
		slog.Debug("perception: no arena at agent position", "agent", a.Name, "error", err)
		return nil
	}

	type scored struct {
		dist  int
		event world.Event
	}
	seen := make(map[[3]string]struct{})
	var percepts []scored

	for _, pos := range positions {
		arena, err := w.Grid.TilePath(pos, world.LevelArena)
		if err != nil || arena != currentArena {
			continue
		}
		t, err := w.Grid.Tile(pos.X, pos.Y)
		if err != nil {
			continue
		}
		for _, e := range t.Events {
			e = e.Normalize()
			triple := e.Triple()
			if _, ok := seen[triple]; ok {
				continue
			}
			seen[triple] = struct{}{}
			percepts = append(percepts, scored{dist: a.Position.DistSq(pos), event: e})
		}
	}

	sort.SliceStable(percepts, func(i, j int) bool { return percepts[i].dist < percepts[j].dist })
	if len(percepts) > a.AttentionBandwidth {
		percepts = percepts[:a.AttentionBandwidth]
	}
	out := make([]world.Event, len(percepts))
	for i, s := range percepts {
		out[i] = s.event
	}
	return out
}

// processSelfChat stores the agent's own ongoing conversation as a chat
// node the first time it is perceived.
func (p *Perception) processSelfChat(a *Agent, w *World, events []world.Event) *memory.Node {
	latest := a.Memory.LatestEvents(a.Retention)

	for _, e := range events {
		if eventKnown(latest, e) {
			continue
		}
		if e.Subject != a.Name || e.Predicate != "chat with" {
			continue
		}
		actionEvent := a.Short.Action.Event
		if actionEvent.Description == "" {
			return nil
		}
		keywords := extractKeywords(e.Subject, e.Object)
		emb := p.embed(actionEvent.Description)
		significance := p.significance(a, actionEvent.Description)
		return a.Memory.AddChat(actionEvent, significance, keywords, emb, nil, w.Now)
	}
	return nil
}

// storePercepts records each new, non-idle perceived event and drains
// the reflection trigger by its significance.
func (p *Perception) storePercepts(a *Agent, w *World, events []world.Event, chatNode *memory.Node) []*memory.Node {
	latest := a.Memory.LatestEvents(a.Retention)
	var evidence []string
	if chatNode != nil {
		evidence = []string{chatNode.ID}
	}

	var nodes []*memory.Node
	for _, e := range events {
		if eventKnown(latest, e) {
			continue
		}
		desc := strings.TrimSpace(e.Description)
		if desc == "" || strings.EqualFold(desc, "idle") {
			continue
		}

		significance := p.significance(a, desc)
		keywords := extractKeywords(e.Subject, e.Object)
		emb := p.embed(desc)

		a.Short.ImportanceTrigger -= significance
		a.Short.ImportanceCount++

		nodes = append(nodes, a.Memory.AddEvent(e, significance, keywords, emb, evidence, w.Now))
	}
	return nodes
}

// significance scores a percept 1.0–10.0; malformed or missing
// generation falls back to 1.0, and importance triggers bump the score.
func (p *Perception) significance(a *Agent, description string) float64 {
	score := 1.0
	if p.Gen != nil {
		raw, err := p.Gen.Generate(buildSignificancePrompt(a, description), llm.Options{MaxTokens: 10, Stop: []string{"\n"}})
		if err == nil {
			if parsed, perr := ParseSignificance(raw); perr == nil {
				score = parsed
			} else {
				slog.Debug("significance defaulted", "agent", a.Name, "error", perr)
			}
		} else {
			slog.Debug("significance defaulted", "agent", a.Name, "error", err)
		}
	}
	lower := strings.ToLower(description)
	for _, trigger := range a.ImportanceTriggers {
		if strings.Contains(lower, strings.ToLower(trigger)) {
			score = min(score+2.0, 10.0)
		}
	}
	return score
}

func (p *Perception) embed(text string) embedding.Vector {
	if p.Embedder == nil {
		return nil
	}
	v, err := p.Embedder.Embed(text)
	if err != nil {
		slog.Debug("percept embedding failed", "error", err)
		return nil
	}
	return v
}

func eventKnown(latest []world.Event, e world.Event) bool {
	for _, l := range latest {
		if l == e {
			return true
		}
	}
	return false
}

// extractKeywords derives keyword index keys from an event's subject
// and object, dropping address prefixes and wrappers.
func extractKeywords(subject, object string) []string {
	var keywords []string
	for _, raw := range []string{subject, object} {
		k := normalizeKeyword(raw)
		if k != "" && !contains(keywords, k) {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func normalizeKeyword(value string) string {
	if i := strings.LastIndex(value, ":"); i >= 0 {
		value = value[i+1:]
	}
	return strings.Trim(strings.TrimSpace(value), "()")
}
