package agents

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/memory"
	"github.com/talgya/hamlet/internal/world"
)

// Reflector turns accumulated experience into higher-level thoughts.
// It fires when the agent's importance trigger has been drained by
// perceived significance, asks what questions the recent record raises,
// retrieves evidence for each, and stores one insight per question.
type Reflector struct {
	Gen llm.Generator

	// FocalCount is how many recent high-relevance nodes seed the focal
	// questions.
	FocalCount int
}

// NewReflector creates a reflector.
func NewReflector(gen llm.Generator) *Reflector {
	return &Reflector{Gen: gen, FocalCount: 8}
}

// Reflect runs one reflection pass if the trigger has fired. Returns
// the insight thoughts created.
func (r *Reflector) Reflect(a *Agent, now time.Time) []*memory.Node {
	if a.Short.ImportanceTrigger > 0 || a.Short.ImportanceCount == 0 {
		return nil
	}
	defer func() {
		a.Short.ImportanceTrigger = ReflectionThreshold
		a.Short.ImportanceCount = 0
	}()

	questions := r.focalQuestions(a, now)
	if len(questions) == 0 {
		return nil
	}

	retrieved := a.Retrieval.RetrieveRelevantNodes(questions, now)

	var insights []*memory.Node
	for _, q := range questions {
		evidence := retrieved[q]
		if len(evidence) == 0 {
			continue
		}
		if insight := r.insightFor(a, q, evidence, now); insight != nil {
			insights = append(insights, insight)
		}
	}
	slog.Info("reflection complete", "agent", a.Name, "insights", len(insights))
	return insights
}

// focalQuestions derives up to three salient questions from the
// agent's recent high-relevance memories.
func (r *Reflector) focalQuestions(a *Agent, now time.Time) []string {
	recent := recentSalientNodes(a.Memory, r.FocalCount, now)
	if len(recent) == 0 {
		return nil
	}

	statements := make([]string, len(recent))
	for i, n := range recent {
		statements[i] = n.Event.Description
	}

	if r.Gen == nil {
		// Without a generator, reflect directly on the statements.
		if len(statements) > 3 {
			statements = statements[:3]
		}
		return statements
	}

	raw, err := r.Gen.Generate(buildFocalQuestionsPrompt(a, statements), llm.Options{MaxTokens: 200})
	if err != nil {
		slog.Debug("focal question generation failed", "agent", a.Name, "error", err)
		return nil
	}
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
		if len(questions) == 3 {
			break
		}
	}
	return questions
}

// insightFor generates one insight thought backed by evidence node ids.
func (r *Reflector) insightFor(a *Agent, question string, evidence []*memory.Node, now time.Time) *memory.Node {
	descriptions := make([]string, len(evidence))
	ids := make([]string, len(evidence))
	for i, n := range evidence {
		descriptions[i] = n.Event.Description
		ids[i] = n.ID
	}

	insight := question
	if r.Gen != nil {
		raw, err := r.Gen.Generate(buildInsightPrompt(a, descriptions), llm.Options{MaxTokens: 120, Stop: []string{"\n"}})
		if err != nil || strings.TrimSpace(raw) == "" {
			slog.Debug("insight generation failed", "agent", a.Name, "error", err)
			return nil
		}
		insight = StripLabel(raw)
	}

	var emb embedding.Vector
	if a.Retrieval != nil && a.Retrieval.Embedder != nil {
		if v, err := a.Retrieval.Embedder.Embed(insight); err == nil {
			emb = v
		}
	}
	e := world.NewEvent(a.Name, "reflects", "on recent events", insight)
	return a.Memory.AddThought(e, 7.0, []string{a.Name, "reflection"}, emb, ids, now)
}

// recentSalientNodes returns the n live event/thought nodes with the
// highest relevance, preferring newer nodes among equals.
func recentSalientNodes(store *memory.Store, n int, now time.Time) []*memory.Node {
	var nodes []*memory.Node
	for _, t := range []memory.Type{memory.TypeEvent, memory.TypeThought} {
		for _, node := range store.NodesByType(t) {
			if node.IsExpired(now) || node.Event.IsIdle() {
				continue
			}
			nodes = append(nodes, node)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Relevance != nodes[j].Relevance {
			return nodes[i].Relevance > nodes[j].Relevance
		}
		return nodes[i].Created.After(nodes[j].Created)
	})
	if len(nodes) > n {
		nodes = nodes[:n]
	}
	return nodes
}
