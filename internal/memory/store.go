package memory

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/world"
)

// Store is an append-only memory stream. It exclusively owns node
// lifetime: the keyword indexes hold node ids, never nodes, and expired
// entries are pruned lazily when a keyword is looked up.
type Store struct {
	seqs map[Type][]*Node // newest first
	byID map[string]*Node

	kwEvent   map[string][]string // lower-cased keyword → node ids, newest first
	kwThought map[string][]string
	kwChat    map[string][]string

	strengthEvent   map[string]int
	strengthThought map[string]int

	entropy *ulid.MonotonicEntropy
	idClock time.Time
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{
		seqs:            map[Type][]*Node{TypeEvent: nil, TypeThought: nil, TypeChat: nil},
		byID:            make(map[string]*Node),
		kwEvent:         make(map[string][]string),
		kwThought:       make(map[string][]string),
		kwChat:          make(map[string][]string),
		strengthEvent:   make(map[string]int),
		strengthThought: make(map[string]int),
		entropy:         ulid.Monotonic(rand.Reader, 0),
	}
}

// nextID mints a ULID that is strictly greater than every id handed out
// before it, even when the supplied clock stands still or steps back.
func (s *Store) nextID(now time.Time) string {
	if now.After(s.idClock) {
		s.idClock = now
	}
	return ulid.MustNew(ulid.Timestamp(s.idClock), s.entropy).String()
}

func (s *Store) addNode(t Type, e world.Event, relevance float64, keywords []string, emb embedding.Vector, evidence []string, expiration, now time.Time) *Node {
	n := &Node{
		ID:           s.nextID(now),
		Type:         t,
		Created:      now,
		LastAccessed: now,
		Relevance:    relevance,
		Expiration:   expiration,
		Keywords:     keywords,
		Embedding:    emb,
		Evidence:     evidence,
		Event:        e,
	}
	s.seqs[t] = append([]*Node{n}, s.seqs[t]...)
	s.byID[n.ID] = n
	return n
}

func indexKeywords(idx map[string][]string, strength map[string]int, n *Node) {
	for _, kw := range n.Keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" {
			continue
		}
		idx[key] = append([]string{n.ID}, idx[key]...)
		// Idle events stay out of strength accounting so that idling
		// never dominates the relevance signal for a keyword.
		if strength != nil && !n.Event.IsIdle() {
			strength[key]++
		}
	}
}

// AddEvent stores a perceived event as a memory node.
func (s *Store) AddEvent(e world.Event, relevance float64, keywords []string, emb embedding.Vector, evidence []string, now time.Time) *Node {
	n := s.addNode(TypeEvent, e, relevance, keywords, emb, evidence, time.Time{}, now)
	indexKeywords(s.kwEvent, s.strengthEvent, n)
	return n
}

// AddThought stores a reflective thought. Thoughts fade: they expire
// ThoughtTTL after creation.
func (s *Store) AddThought(e world.Event, relevance float64, keywords []string, emb embedding.Vector, evidence []string, now time.Time) *Node {
	n := s.addNode(TypeThought, e, relevance, keywords, emb, evidence, now.Add(ThoughtTTL), now)
	indexKeywords(s.kwThought, s.strengthThought, n)
	return n
}

// AddChat stores a conversation memory.
func (s *Store) AddChat(e world.Event, relevance float64, keywords []string, emb embedding.Vector, evidence []string, now time.Time) *Node {
	n := s.addNode(TypeChat, e, relevance, keywords, emb, evidence, time.Time{}, now)
	indexKeywords(s.kwChat, nil, n)
	return n
}

// NodesByType returns the node sequence for a type, newest first.
// The returned slice is shared; callers must not mutate it.
func (s *Store) NodesByType(t Type) []*Node {
	return s.seqs[t]
}

// All returns every node, newest-first within each type.
func (s *Store) All() []*Node {
	var out []*Node
	for _, t := range []Type{TypeEvent, TypeThought, TypeChat} {
		out = append(out, s.seqs[t]...)
	}
	return out
}

// Len returns the total number of nodes ever stored.
func (s *Store) Len() int {
	return len(s.byID)
}

// KeywordStrength returns the accumulated non-idle strength for a
// keyword across event and thought nodes.
func (s *Store) KeywordStrength(keyword string) int {
	key := strings.ToLower(strings.TrimSpace(keyword))
	return s.strengthEvent[key] + s.strengthThought[key]
}

// LatestEvents returns the distinct events among the n most recent
// event nodes, newest first.
func (s *Store) LatestEvents(n int) []world.Event {
	seq := s.seqs[TypeEvent]
	if n >= 0 && n < len(seq) {
		seq = seq[:n]
	}
	seen := make(map[world.Event]struct{})
	var out []world.Event
	for _, node := range seq {
		if _, ok := seen[node.Event]; ok {
			continue
		}
		seen[node.Event] = struct{}{}
		out = append(out, node.Event)
	}
	return out
}

// lookupKeyword resolves the live nodes behind a keyword entry and
// compacts the stored id list in passing — the lazy prune.
func (s *Store) lookupKeyword(idx map[string][]string, keyword string, now time.Time) []*Node {
	key := strings.ToLower(strings.TrimSpace(keyword))
	if key == "" {
		return nil
	}
	ids, ok := idx[key]
	if !ok {
		return nil
	}

	var nodes []*Node
	live := ids[:0]
	for _, id := range ids {
		n, ok := s.byID[id]
		if !ok || n.IsExpired(now) {
			continue
		}
		live = append(live, id)
		nodes = append(nodes, n)
	}
	idx[key] = live
	return nodes
}

// RelevantEvents returns the non-expired event nodes indexed under the
// event's subject, predicate, or object. Order is unspecified.
func (s *Store) RelevantEvents(e world.Event, now time.Time) []*Node {
	return s.relevantByKeys(s.kwEvent, e, now)
}

// RelevantThoughts returns the non-expired thought nodes indexed under
// the event's subject, predicate, or object. Order is unspecified.
func (s *Store) RelevantThoughts(e world.Event, now time.Time) []*Node {
	return s.relevantByKeys(s.kwThought, e, now)
}

func (s *Store) relevantByKeys(idx map[string][]string, e world.Event, now time.Time) []*Node {
	seen := make(map[string]struct{})
	var out []*Node
	for _, key := range []string{e.Subject, e.Predicate, e.Object} {
		if key == "" {
			continue
		}
		for _, n := range s.lookupKeyword(idx, key, now) {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
