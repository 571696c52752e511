package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/world"
)

// IdentityReviser refreshes an agent's self-described status at the
// start of each day and records the revision as a thought.
type IdentityReviser struct {
	Gen      llm.Generator
	Embedder embedding.Embedder
}

// NewIdentityReviser creates an identity reviser.
func NewIdentityReviser(gen llm.Generator, emb embedding.Embedder) *IdentityReviser {
	return &IdentityReviser{Gen: gen, Embedder: emb}
}

// Revise asks for a fresh status phrase and stores it. Without a
// generator, or on an empty reply, the status is left alone.
func (r *IdentityReviser) Revise(a *Agent, now time.Time) error {
	if r.Gen == nil {
		return nil
	}
	raw, err := r.Gen.Generate(buildStatusRevisionPrompt(a), llm.Options{MaxTokens: 200, Stop: []string{"\n", "</status>"}})
	if err != nil {
		return fmt.Errorf("revise status: %w", err)
	}
	status := strings.TrimSpace(raw)
	if status == "" {
		return nil
	}

	a.Status = status
	thought := fmt.Sprintf("Status update for %s: %s", a.Name, status)
	var emb embedding.Vector
	if r.Embedder != nil {
		if v, err := r.Embedder.Embed(thought); err == nil {
			emb = v
		}
	}
	e := world.NewEvent(a.Name, "status", a.Name, thought)
	a.Memory.AddThought(e, 5.0, []string{"status"}, emb, nil, now)
	return nil
}
