package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/memory"
	"github.com/talgya/hamlet/internal/world"
)

// Defaults for the perceptual envelope and reflection trigger.
const (
	DefaultVisionRange        = 5
	DefaultAttentionBandwidth = 3
	DefaultRetention          = 5

	// ReflectionThreshold is the accumulated percept significance that
	// must drain before the agent reflects.
	ReflectionThreshold = 150.0
)

// HourTask is one hour of the derived daily schedule.
type HourTask struct {
	Hour int // 0–23
	Task string
}

// ShortTerm is the agent's working state: today's plan, the active
// action, and the reflection countdown.
type ShortTerm struct {
	Blocks []DayBlock
	Hourly []HourTask

	FirstDay bool
	NewDay   bool

	Now    time.Time
	Action *Action

	// ImportanceTrigger counts down as percepts accumulate significance;
	// reaching zero triggers reflection.
	ImportanceTrigger float64
	ImportanceCount   int
}

// Agent is a simulated villager: a persistent identity, a position on
// the grid, and the memory structures its cognition runs over.
type Agent struct {
	Name       string
	Age        int
	Traits     string
	Lifestyle  string
	Background string
	Status     string
	Sex        string

	Position world.Coord

	VisionRange        int
	AttentionBandwidth int
	Retention          int

	ImportanceTriggers []string

	Memory    *memory.Store
	Retrieval *memory.Retrieval
	Spatial   *SpatialMemory

	Short ShortTerm
}

// NewAgent creates an agent with default perception parameters, an
// empty memory store, and the given retrieval engine wiring.
func NewAgent(name string, age int, traits, lifestyle string, pos world.Coord, retrieval *memory.Retrieval) *Agent {
	a := &Agent{
		Name:               name,
		Age:                age,
		Traits:             traits,
		Lifestyle:          lifestyle,
		Position:           pos,
		VisionRange:        DefaultVisionRange,
		AttentionBandwidth: DefaultAttentionBandwidth,
		Retention:          DefaultRetention,
		Retrieval:          retrieval,
		Spatial:            NewSpatialMemory(),
		Short: ShortTerm{
			FirstDay:          true,
			NewDay:            true,
			Action:            NewAction(),
			ImportanceTrigger: ReflectionThreshold,
		},
	}
	if retrieval != nil {
		a.Memory = retrieval.Store
	} else {
		a.Memory = memory.NewStore()
	}
	return a
}

// Identity renders the agent's self-description used in prompts.
func (a *Agent) Identity() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nAge: %d\nTraits: %s\nLifestyle: %s\n", a.Name, a.Age, a.Traits, a.Lifestyle)
	if a.Background != "" {
		fmt.Fprintf(&b, "Background: %s\n", a.Background)
	}
	if a.Status != "" {
		fmt.Fprintf(&b, "Current status: %s\n", a.Status)
	}
	return b.String()
}

// CurrentTask returns the day-block task active at the given time plus
// the minutes remaining in its block. Outside every block the agent is
// idle for a default half hour.
func (a *Agent) CurrentTask(now time.Time) (string, int) {
	minute := now.Hour()*60 + now.Minute()
	for _, block := range a.Short.Blocks {
		if block.Start <= minute && minute < block.End {
			return block.Task, block.End - minute
		}
	}
	return "idle", 30
}
