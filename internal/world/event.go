// Package world provides the tile grid, address index, and pathfinding.
package world

import "fmt"

// Event is an observable fact placed on tiles and stored in agent memory.
// It is a plain value: two events are the same event iff all four fields
// match, which is what tile dedup and memory dedup rely on.
type Event struct {
	Subject     string `json:"subject"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	Description string `json:"description"`
}

// NewEvent creates an event with all fields set.
func NewEvent(subject, predicate, object, description string) Event {
	return Event{Subject: subject, Predicate: predicate, Object: object, Description: description}
}

// Normalize fills empty predicate/object/description with the idle defaults.
func (e Event) Normalize() Event {
	if e.Predicate == "" {
		e.Predicate = "is"
	}
	if e.Object == "" {
		e.Object = "idle"
	}
	if e.Description == "" {
		e.Description = "idle"
	}
	return e
}

// IsIdle reports whether the event is the idle sentinel. Idle events are
// kept out of keyword-strength accounting and ranked retrieval so that
// idling does not dominate relevance signals.
func (e Event) IsIdle() bool {
	return e.Predicate+" "+e.Object == "is idle"
}

// IsZero reports whether the event carries no content at all.
func (e Event) IsZero() bool {
	return e == Event{}
}

// Triple returns the (subject, predicate, object) tuple.
func (e Event) Triple() [3]string {
	return [3]string{e.Subject, e.Predicate, e.Object}
}

func (e Event) String() string {
	return fmt.Sprintf("(%s, %s, %s)", e.Subject, e.Predicate, e.Object)
}
