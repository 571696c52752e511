package memory

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/world"
)

// Retrieval defaults. Recency decay is rank-based: the k-th most recent
// candidate scores decay^k regardless of how much wall time passed.
const (
	DefaultRecencyDecay = 0.99
	DefaultMaxResults   = 30
)

// ContextBundle pairs a perceived event with the memory nodes it pulled
// out of the keyword indexes.
type ContextBundle struct {
	CurrentEvent world.Event
	ContextNodes []*Node
}

// Retrieval ranks a store's nodes against focal queries by a weighted
// blend of recency, importance, and embedding similarity.
type Retrieval struct {
	Store    *Store
	Embedder embedding.Embedder

	RecencyDecay     float64
	RecencyWeight    float64
	ImportanceWeight float64
	RelevanceWeight  float64
	MaxResults       int
}

// NewRetrieval creates a retrieval engine with default weights.
func NewRetrieval(store *Store, emb embedding.Embedder) *Retrieval {
	return &Retrieval{
		Store:            store,
		Embedder:         emb,
		RecencyDecay:     DefaultRecencyDecay,
		RecencyWeight:    1,
		ImportanceWeight: 1,
		RelevanceWeight:  1,
		MaxResults:       DefaultMaxResults,
	}
}

// RetrieveContext looks up the events and thoughts related to each
// perceived node and bundles them, keyed by the event's description.
func (r *Retrieval) RetrieveContext(perceived []*Node, now time.Time) map[string]ContextBundle {
	result := make(map[string]ContextBundle, len(perceived))

	for _, p := range perceived {
		desc := p.Event.Description
		if desc == "" {
			desc = "unknown"
		}

		related := r.Store.RelevantEvents(p.Event, now)
		thoughts := r.Store.RelevantThoughts(p.Event, now)

		seen := make(map[string]struct{}, len(related)+len(thoughts))
		var combined []*Node
		for _, n := range append(related, thoughts...) {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			combined = append(combined, n)
		}

		result[desc] = ContextBundle{CurrentEvent: p.Event, ContextNodes: combined}
	}
	return result
}

// RetrieveRelevantNodes scores all non-expired, non-idle event and
// thought nodes against each focal description and returns the top
// MaxResults per focal, most recent first. Every returned node has its
// LastAccessed stamped to now.
func (r *Retrieval) RetrieveRelevantNodes(focals []string, now time.Time) map[string][]*Node {
	result := make(map[string][]*Node, len(focals))
	if len(focals) == 0 {
		return result
	}

	candidates := r.candidates(now)
	slog.Debug("retrieval candidates", "count", len(candidates))

	for _, focal := range focals {
		var focalEmb embedding.Vector
		if r.Embedder != nil {
			var err error
			focalEmb, err = r.Embedder.Embed(focal)
			if err != nil {
				// Degrade to recency+importance only.
				slog.Debug("focal embedding failed", "focal", focal, "error", err)
				focalEmb = nil
			}
		}

		recency := r.recencyScores(candidates)
		importance := importanceScores(candidates)
		relevance := relevanceScores(candidates, focalEmb)

		recency = normalize(recency)
		importance = normalize(importance)
		relevance = normalize(relevance)

		combined := make(map[string]float64)
		for _, m := range []map[string]float64{recency, importance, relevance} {
			for id := range m {
				combined[id] = r.RecencyWeight*recency[id] +
					r.ImportanceWeight*importance[id] +
					r.RelevanceWeight*relevance[id]
			}
		}

		topIDs := topN(combined, r.MaxResults)
		var top []*Node
		for _, n := range candidates {
			if _, ok := topIDs[n.ID]; ok {
				n.LastAccessed = now
				top = append(top, n)
			}
		}
		result[focal] = top
	}
	return result
}

// candidates gathers the live, non-idle event and thought nodes sorted
// by creation time, newest first.
func (r *Retrieval) candidates(now time.Time) []*Node {
	var nodes []*Node
	for _, t := range []Type{TypeEvent, TypeThought} {
		for _, n := range r.Store.NodesByType(t) {
			if n.IsExpired(now) || n.Event.IsIdle() {
				continue
			}
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Created.After(nodes[j].Created)
	})
	return nodes
}

func (r *Retrieval) recencyScores(nodes []*Node) map[string]float64 {
	decay := r.RecencyDecay
	if decay <= 0 {
		decay = DefaultRecencyDecay
	}
	scores := make(map[string]float64, len(nodes))
	factor := 1.0
	for _, n := range nodes {
		scores[n.ID] = factor
		factor *= decay
	}
	return scores
}

func importanceScores(nodes []*Node) map[string]float64 {
	scores := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		scores[n.ID] = n.Relevance
	}
	return scores
}

func relevanceScores(nodes []*Node, focal embedding.Vector) map[string]float64 {
	scores := make(map[string]float64)
	if len(focal) == 0 {
		return scores
	}
	for _, n := range nodes {
		if len(n.Embedding) == 0 {
			continue
		}
		scores[n.ID] = embedding.Cosine(n.Embedding, focal)
	}
	return scores
}

// normalize min-max scales a score map to [0, 1]. A flat map — every
// value equal — maps to the 0.5 midpoint rather than to 0 or 1.
func normalize(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return values
	}
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	out := make(map[string]float64, len(values))
	if minV == maxV {
		for k := range values {
			out[k] = 0.5
		}
		return out
	}
	span := maxV - minV
	for k, v := range values {
		out[k] = (v - minV) / span
	}
	return out
}

// topN returns the ids of the n highest combined scores. Exact ties are
// broken arbitrarily.
func topN(scores map[string]float64, n int) map[string]struct{} {
	out := make(map[string]struct{})
	if n <= 0 || len(scores) == 0 {
		return out
	}
	type pair struct {
		id    string
		score float64
	}
	ranked := make([]pair, 0, len(scores))
	for id, s := range scores {
		ranked = append(ranked, pair{id, s})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if n > len(ranked) {
		n = len(ranked)
	}
	for _, p := range ranked[:n] {
		out[p.id] = struct{}{}
	}
	return out
}
