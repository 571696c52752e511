// Package agents holds the agent model and its cognition pipeline:
// perception, planning, chat, reflection, and action execution.
package agents

import (
	"fmt"
	"time"

	"github.com/talgya/hamlet/internal/world"
)

// ObjectInteraction describes how an agent uses the game object at its
// action target.
type ObjectInteraction struct {
	Description string
	Event       world.Event
}

// Chat tracks an in-progress conversation attached to an action. The
// buffer counts down per-partner cool-off ticks so the same pair does
// not immediately re-chat.
type Chat struct {
	WithWhom string
	Log      [][2]string // (speaker, utterance) in order
	Buffer   map[string]int
	EndTime  time.Time
}

// PathPlan holds the remaining movement steps of an action. IsSet
// distinguishes "no path computed yet" from "computed and already
// consumed".
type PathPlan struct {
	Steps []world.Coord
	IsSet bool
}

// Action is the agent's current undertaking. It is created by the
// planner, mutated in place by the executor, and cleared by expiry
// cleanup.
type Action struct {
	Address     string
	StartTime   time.Time
	Duration    int // minutes
	Description string
	Event       world.Event

	ObjectInteraction ObjectInteraction
	Chat              Chat
	Path              PathPlan
	Subtasks          []string
}

// NewAction returns an empty action with an initialized chat buffer.
func NewAction() *Action {
	return &Action{Chat: Chat{Buffer: make(map[string]int)}}
}

// Start stamps the action's start time.
func (a *Action) Start(now time.Time) {
	a.StartTime = now
}

// EndTime returns when the action generically ends: the start time
// rounded up to the next whole minute, plus the duration. Zero when the
// action has not started.
func (a *Action) EndTime() time.Time {
	if a.StartTime.IsZero() {
		return time.Time{}
	}
	start := a.StartTime.Truncate(time.Minute)
	if start.Before(a.StartTime) {
		start = start.Add(time.Minute)
	}
	return start.Add(time.Duration(a.Duration) * time.Minute)
}

// IsFinished reports whether the action has run its course. While a
// chat partner is set, only the chat timer governs completion; a chat
// whose timer has not been started by arrival is not finished. An
// action that never started never finishes.
func (a *Action) IsFinished(now time.Time) bool {
	end := a.EndTime()
	if a.Chat.WithWhom != "" {
		end = a.Chat.EndTime
	}
	if end.IsZero() {
		return false
	}
	return !now.Before(end)
}

// Summary renders a short human-readable account of the action.
func (a *Action) Summary() string {
	if a.StartTime.IsZero() {
		return "No current action."
	}
	return fmt.Sprintf("[%s] %s is %s at %s for %d min",
		a.StartTime.Format("Monday January 2 -- 15:04"),
		a.Event.Subject, a.Description, a.Address, a.Duration)
}
