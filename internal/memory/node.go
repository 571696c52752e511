// Package memory provides the per-agent long-term memory store and the
// ranked retrieval engine that scores it.
package memory

import (
	"time"

	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/world"
)

// Type classifies a memory node.
type Type string

const (
	TypeEvent   Type = "event"
	TypeThought Type = "thought"
	TypeChat    Type = "chat"
)

// ThoughtTTL is how long a thought node stays retrievable.
const ThoughtTTL = 30 * 24 * time.Hour

// Node is a single timestamped memory. Nodes are created by the store
// and never freed; expiry only hides them from retrieval.
type Node struct {
	ID           string           `json:"id"`
	Type         Type             `json:"type"`
	Created      time.Time        `json:"created"`
	LastAccessed time.Time        `json:"last_accessed"`
	Relevance    float64          `json:"relevance"` // significance at creation, 1.0–10.0
	Expiration   time.Time        `json:"expiration,omitzero"`
	Keywords     []string         `json:"keywords,omitempty"`
	Embedding    embedding.Vector `json:"-"`
	Evidence     []string         `json:"evidence,omitempty"` // ids of nodes this one builds on
	Event        world.Event      `json:"event"`
}

// IsExpired reports whether the node has expired at the given time.
// Nodes without an expiration never expire.
func (n *Node) IsExpired(now time.Time) bool {
	return !n.Expiration.IsZero() && !now.Before(n.Expiration)
}
