package agents

import (
	"log/slog"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/memory"
	"github.com/talgya/hamlet/internal/world"
)

// SeedMemory is one pre-loaded long-term memory for a new agent.
type SeedMemory struct {
	Content   string
	Relevance float64
}

// Blueprint describes an agent to build: identity, spawn point, seeded
// memories, and a private "whisper" turned into an inner thought.
type Blueprint struct {
	Name       string
	Age        int
	Traits     string
	Lifestyle  string
	Background string
	Status     string
	Sex        string

	Position           world.Coord
	Memories           []SeedMemory
	Whisper            string
	ImportanceTriggers []string
}

// Builder assembles agents from blueprints, seeding their memory
// stores.
type Builder struct {
	Gen      llm.Generator
	Embedder embedding.Embedder
}

// NewBuilder creates an agent builder.
func NewBuilder(gen llm.Generator, emb embedding.Embedder) *Builder {
	return &Builder{Gen: gen, Embedder: emb}
}

// Build creates an agent from a blueprint: fresh memory store and
// retrieval engine, seeded memories, and the whisper distilled into an
// inner thought.
func (b *Builder) Build(bp Blueprint, now time.Time) *Agent {
	store := memory.NewStore()
	retrieval := memory.NewRetrieval(store, b.Embedder)

	a := NewAgent(bp.Name, bp.Age, bp.Traits, bp.Lifestyle, bp.Position, retrieval)
	a.Background = bp.Background
	a.Status = bp.Status
	a.Sex = bp.Sex
	a.ImportanceTriggers = bp.ImportanceTriggers
	a.Short.Now = now

	for _, m := range bp.Memories {
		e := world.NewEvent(bp.Name, "remembers", "", m.Content)
		store.AddEvent(e, m.Relevance, []string{bp.Name}, b.embed(m.Content), nil, now)
	}

	if bp.Whisper != "" {
		b.seedInnerThought(a, bp.Whisper, now)
	}
	return a
}

// seedInnerThought rewrites the whisper as the agent's own thought and
// stores it, with triple extraction when a generator is available.
func (b *Builder) seedInnerThought(a *Agent, whisper string, now time.Time) {
	thought := whisper
	if b.Gen != nil {
		raw, err := b.Gen.Generate(buildInnerThoughtPrompt(a, whisper), llm.Options{MaxTokens: 100, Stop: []string{"</thought>"}})
		if err == nil && StripLabel(raw) != "" {
			thought = StripLabel(raw)
		} else if err != nil {
			slog.Debug("inner thought generation failed", "agent", a.Name, "error", err)
		}
	}

	emb := b.embed(thought)
	stored := false
	if b.Gen != nil {
		raw, err := b.Gen.Generate(buildEventTriplePrompt(a, thought), llm.Options{MaxTokens: 200, Stop: []string{"</event>"}})
		if err == nil {
			for _, t := range ParseEventTriples(raw) {
				e := world.NewEvent(t[0], t[1], t[2], thought)
				a.Memory.AddThought(e, 6.5, []string{t[0], t[1], t[2]}, emb, nil, now)
				stored = true
			}
		}
	}
	if !stored {
		e := world.NewEvent(a.Name, "believes", "deeply held convictions", thought)
		a.Memory.AddThought(e, 6.5, []string{a.Name}, emb, nil, now)
	}
}

func (b *Builder) embed(text string) embedding.Vector {
	if b.Embedder == nil {
		return nil
	}
	v, err := b.Embedder.Embed(text)
	if err != nil {
		return nil
	}
	return v
}

// DefaultBlueprints is the stock hamlet cast: a farmer, a huntress,
// and an innkeeper.
func DefaultBlueprints() []Blueprint {
	return []Blueprint{
		{
			Name:      "Thomas the Farmer",
			Age:       45,
			Traits:    "hardworking, humble, kind",
			Lifestyle: "Wakes up early, tends to the fields, and eats dinner by the fireplace at sunset.",
			Position:  world.Coord{X: 3, Y: 3},
			Memories: []SeedMemory{
				{Content: "Owns a field next to his house where he grows barley and cabbage.", Relevance: 8},
				{Content: "Sells surplus crops to the tavern in the evening.", Relevance: 5},
				{Content: "Is friendly with the innkeeper and hunter.", Relevance: 6},
			},
			Whisper: "You deeply value the land inherited from your father; " +
				"You feel a duty to keep the village fed; " +
				"You trust Garrick the Innkeeper with village matters; " +
				"You admire Ayla's independence even though she rarely speaks; " +
				"You have a crush on Ayla.",
			Background: "A farmer in a tiny forest hamlet; inherited his father's barley and cabbage field beside his house.",
			Status:     "content, slightly tired from fieldwork",
			Sex:        "male",
		},
		{
			Name:      "Ayla the Huntress",
			Age:       32,
			Traits:    "silent, observant, resilient",
			Lifestyle: "Roams the forest at dawn, repairs gear in her cabin, and drinks occasionally at the tavern.",
			Position:  world.Coord{X: 10, Y: 3},
			Memories: []SeedMemory{
				{Content: "Skilled in trapping and archery, often hunts wild game in the forest.", Relevance: 9},
				{Content: "Has a secret stash hidden behind her cabin.", Relevance: 4},
				{Content: "Sometimes trades pelts and meat with the innkeeper.", Relevance: 5},
			},
			Whisper: "This is very important — you prefer solitude over company; " +
				"You see Garrick as a source of useful gossip; " +
				"You respect Thomas for his honesty; " +
				"You hide your emotions and secrets in the forest.",
			Background: "A solitary huntress living at the forest's edge; skilled with bow and traps; fiercely self-sufficient.",
			Status:     "alert, reserved",
			Sex:        "female",
		},
		{
			Name:      "Garrick the Innkeeper",
			Age:       52,
			Traits:    "jovial, talkative, wise",
			Lifestyle: "Wakes late, cleans the tavern, chats with guests, and enjoys telling stories in the evening.",
			Position:  world.Coord{X: 6, Y: 11},
			Memories: []SeedMemory{
				{Content: "Owns The Drunken Boar Tavern in the village center.", Relevance: 7},
				{Content: "Knows many rumors and secrets of the village.", Relevance: 6},
				{Content: "Respects the farmer and finds the hunter mysterious.", Relevance: 5},
			},
			Whisper: "You know everyone's stories and enjoy collecting rumors; " +
				"You often hear confessions late at night over ale; " +
				"You like teasing Ayla, even if she rarely responds; " +
				"You admire Thomas's work ethic and often give him a free drink; " +
				"You have a crush on Ayla.",
			Background: "Innkeeper of The Drunken Boar Tavern in a tiny forest hamlet; keeper of stories and village gossip.",
			Status:     "cheerful, attentive to guests",
			Sex:        "male",
		},
	}
}
