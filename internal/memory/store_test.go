package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/talgya/hamlet/internal/world"
)

var testBase = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func TestStoreIDsStrictlyIncreasing(t *testing.T) {
	s := NewStore()

	// Same timestamp for every node, so ordering must come from the
	// monotonic entropy, not the clock.
	var prev string
	for i := 0; i < 50; i++ {
		n := s.AddEvent(world.NewEvent("thomas", "is", "farming", "farming"), 1, nil, nil, nil, testBase)
		if n.ID <= prev {
			t.Fatalf("node %d: id %q not greater than previous %q", i, n.ID, prev)
		}
		prev = n.ID
	}

	// A clock that steps backwards must not break monotonicity either.
	n := s.AddEvent(world.NewEvent("thomas", "is", "resting", "resting"), 1, nil, nil, nil, testBase.Add(-time.Hour))
	if n.ID <= prev {
		t.Fatalf("backwards clock: id %q not greater than previous %q", n.ID, prev)
	}
}

func TestThoughtExpiryBoundary(t *testing.T) {
	s := NewStore()
	n := s.AddThought(world.NewEvent("ayla", "thinks about", "hunting", "hunting plans"), 5, nil, nil, nil, testBase)

	if n.IsExpired(testBase.Add(ThoughtTTL - time.Second)) {
		t.Fatal("thought expired one second before its TTL")
	}
	if !n.IsExpired(testBase.Add(ThoughtTTL)) {
		t.Fatal("thought not expired exactly at its TTL")
	}

	ev := s.AddEvent(world.NewEvent("ayla", "is", "hunting", "hunting"), 1, nil, nil, nil, testBase)
	if ev.IsExpired(testBase.Add(100 * 365 * 24 * time.Hour)) {
		t.Fatal("event node without expiration reported expired")
	}
}

func TestExpiredThoughtsDropOutOfKeywordLookup(t *testing.T) {
	s := NewStore()
	e := world.NewEvent("garrick", "bakes", "bread", "baking bread")
	s.AddThought(e, 5, []string{"bread"}, nil, nil, testBase)

	got := s.RelevantThoughts(world.NewEvent("", "", "bread", ""), testBase.Add(time.Hour))
	if len(got) != 1 {
		t.Fatalf("before expiry: got %d thoughts, want 1", len(got))
	}

	got = s.RelevantThoughts(world.NewEvent("", "", "bread", ""), testBase.Add(ThoughtTTL))
	if len(got) != 0 {
		t.Fatalf("after expiry: got %d thoughts, want 0", len(got))
	}
}

func TestIdleEventsExcludedFromStrength(t *testing.T) {
	s := NewStore()
	idle := world.NewEvent("thomas", "is", "idle", "idle")
	s.AddEvent(idle, 1, []string{"thomas"}, nil, nil, testBase)
	s.AddEvent(idle, 1, []string{"thomas"}, nil, nil, testBase)
	s.AddEvent(world.NewEvent("thomas", "is", "farming", "farming"), 1, []string{"thomas"}, nil, nil, testBase)

	if got := s.KeywordStrength("thomas"); got != 1 {
		t.Fatalf("KeywordStrength=%d want=1 (idle events must not count)", got)
	}
	// Idle events are still indexed, only their strength is suppressed.
	got := s.RelevantEvents(world.NewEvent("thomas", "", "", ""), testBase)
	if len(got) != 3 {
		t.Fatalf("RelevantEvents=%d want=3", len(got))
	}
}

func TestLatestEventsDistinct(t *testing.T) {
	s := NewStore()
	a := world.NewEvent("thomas", "is", "farming", "farming")
	b := world.NewEvent("ayla", "is", "hunting", "hunting")
	s.AddEvent(a, 1, nil, nil, nil, testBase)
	s.AddEvent(b, 1, nil, nil, nil, testBase.Add(time.Minute))
	s.AddEvent(a, 1, nil, nil, nil, testBase.Add(2*time.Minute))

	got := s.LatestEvents(5)
	if len(got) != 2 {
		t.Fatalf("LatestEvents=%d want=2 distinct", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Fatalf("LatestEvents order = %v, %v; want newest (farming) first", got[0], got[1])
	}

	// Window limits how far back we look, before deduplication.
	got = s.LatestEvents(1)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("LatestEvents(1) = %v, want just the newest event", got)
	}
}

func TestKeywordLookupCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.AddEvent(world.NewEvent("Ayla", "tracks", "Deer", "tracking a deer"), 3, []string{"Deer"}, nil, nil, testBase)

	got := s.RelevantEvents(world.NewEvent("deer", "", "", ""), testBase)
	if len(got) != 1 {
		t.Fatalf("case-insensitive lookup: got %d nodes, want 1", len(got))
	}
}

func TestAllNewestFirstWithinType(t *testing.T) {
	s := NewStore()
	for i := 0; i < 3; i++ {
		desc := fmt.Sprintf("event %d", i)
		s.AddEvent(world.NewEvent("x", "does", desc, desc), 1, nil, nil, nil, testBase.Add(time.Duration(i)*time.Minute))
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("All=%d want=3", len(all))
	}
	if all[0].Event.Description != "event 2" {
		t.Fatalf("first node = %q, want newest", all[0].Event.Description)
	}
	if s.Len() != 3 {
		t.Fatalf("Len=%d want=3", s.Len())
	}
}
