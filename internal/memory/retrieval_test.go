package memory

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/world"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]float64
		want map[string]float64
	}{
		{
			name: "spread",
			in:   map[string]float64{"a": 1, "b": 3, "c": 5},
			want: map[string]float64{"a": 0, "b": 0.5, "c": 1},
		},
		{
			name: "all equal maps to midpoint",
			in:   map[string]float64{"a": 7, "b": 7},
			want: map[string]float64{"a": 0.5, "b": 0.5},
		},
		{
			name: "single value maps to midpoint",
			in:   map[string]float64{"a": 2},
			want: map[string]float64{"a": 0.5},
		},
		{
			name: "empty",
			in:   map[string]float64{},
			want: map[string]float64{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalize(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("len=%d want=%d", len(got), len(tc.want))
			}
			for k, w := range tc.want {
				if math.Abs(got[k]-w) > 1e-9 {
					t.Errorf("%s: got %v want %v", k, got[k], w)
				}
			}
		})
	}
}

func TestRetrieveRelevantNodesCap(t *testing.T) {
	s := NewStore()
	emb := embedding.NewLocal(32)
	r := NewRetrieval(s, emb)

	for i := 0; i < 40; i++ {
		desc := fmt.Sprintf("chore %d", i)
		v, _ := emb.Embed(desc)
		s.AddEvent(world.NewEvent("thomas", "does", desc, desc), float64(1+i%9), nil, v, nil, testBase.Add(time.Duration(i)*time.Minute))
	}

	now := testBase.Add(time.Hour)
	got := r.RetrieveRelevantNodes([]string{"what chores need doing"}, now)
	nodes := got["what chores need doing"]
	if len(nodes) != DefaultMaxResults {
		t.Fatalf("got %d nodes, want cap %d", len(nodes), DefaultMaxResults)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Created.After(nodes[i-1].Created) {
			t.Fatal("results not in most-recent-first order")
		}
	}
	for _, n := range nodes {
		if !n.LastAccessed.Equal(now) {
			t.Fatalf("node %s: LastAccessed not stamped", n.ID)
		}
	}
}

func TestRetrieveRelevantNodesFiltersIdleAndExpired(t *testing.T) {
	s := NewStore()
	r := NewRetrieval(s, embedding.NewLocal(32))

	s.AddEvent(world.NewEvent("thomas", "is", "idle", "idle"), 1, nil, nil, nil, testBase)
	s.AddThought(world.NewEvent("thomas", "plans", "harvest", "harvest plan"), 6, nil, nil, nil, testBase)
	s.AddEvent(world.NewEvent("thomas", "is", "farming", "farming the field"), 3, nil, nil, nil, testBase.Add(time.Minute))

	// Past the thought TTL only the live event should surface.
	now := testBase.Add(ThoughtTTL + time.Minute)
	got := r.RetrieveRelevantNodes([]string{"farming"}, now)
	nodes := got["farming"]
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Event.Description != "farming the field" {
		t.Fatalf("got %q, want the live farming event", nodes[0].Event.Description)
	}
}

func TestRetrieveRelevantNodesWithoutEmbedder(t *testing.T) {
	s := NewStore()
	r := NewRetrieval(s, nil)

	s.AddEvent(world.NewEvent("ayla", "is", "hunting", "hunting"), 8, nil, nil, nil, testBase)
	s.AddEvent(world.NewEvent("ayla", "is", "walking", "walking"), 1, nil, nil, nil, testBase.Add(time.Minute))

	got := r.RetrieveRelevantNodes([]string{"hunting"}, testBase.Add(time.Hour))
	if len(got["hunting"]) != 2 {
		t.Fatalf("got %d nodes, want 2 (recency+importance only)", len(got["hunting"]))
	}
}

func TestRetrieveContext(t *testing.T) {
	s := NewStore()
	r := NewRetrieval(s, nil)

	past := s.AddEvent(world.NewEvent("garrick", "pours", "ale", "pouring ale"), 3, []string{"garrick", "ale"}, nil, nil, testBase)
	s.AddThought(world.NewEvent("garrick", "worries about", "stock", "ale stock is low"), 5, []string{"ale"}, nil, nil, testBase)

	perceived := &Node{Event: world.NewEvent("garrick", "serves", "ale", "serving ale at the bar")}
	got := r.RetrieveContext([]*Node{perceived}, testBase.Add(time.Minute))

	bundle, ok := got["serving ale at the bar"]
	if !ok {
		t.Fatalf("bundle missing, keys=%v", keys(got))
	}
	if bundle.CurrentEvent != perceived.Event {
		t.Fatal("bundle does not carry the perceived event")
	}
	if len(bundle.ContextNodes) != 2 {
		t.Fatalf("got %d context nodes, want 2 (event + thought)", len(bundle.ContextNodes))
	}
	if bundle.ContextNodes[0].ID != past.ID {
		t.Fatal("event context should precede thought context")
	}

	// Empty descriptions fall back to the "unknown" key.
	got = r.RetrieveContext([]*Node{{Event: world.NewEvent("x", "y", "z", "")}}, testBase)
	if _, ok := got["unknown"]; !ok {
		t.Fatalf(`empty description not keyed "unknown", keys=%v`, keys(got))
	}
}

func keys(m map[string]ContextBundle) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
