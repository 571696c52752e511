package agents

import (
	"strings"
	"testing"
	"time"

	"github.com/talgya/hamlet/internal/world"
)

var actBase = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func TestActionEndTimeRoundsUp(t *testing.T) {
	a := NewAction()
	a.Duration = 10

	if !a.EndTime().IsZero() {
		t.Fatal("unstarted action must have zero end time")
	}

	// Sub-minute starts round up to the next whole minute.
	a.Start(actBase.Add(30 * time.Second))
	want := actBase.Add(time.Minute).Add(10 * time.Minute)
	if got := a.EndTime(); !got.Equal(want) {
		t.Fatalf("EndTime=%v want=%v", got, want)
	}

	// Exact-minute starts do not round.
	a.Start(actBase)
	want = actBase.Add(10 * time.Minute)
	if got := a.EndTime(); !got.Equal(want) {
		t.Fatalf("EndTime=%v want=%v", got, want)
	}
}

func TestActionIsFinished(t *testing.T) {
	a := NewAction()
	a.Duration = 10
	a.Start(actBase)

	if a.IsFinished(actBase.Add(9*time.Minute + 59*time.Second)) {
		t.Fatal("finished one second early")
	}
	if !a.IsFinished(actBase.Add(10 * time.Minute)) {
		t.Fatal("not finished exactly at the end time")
	}
}

func TestActionChatOverridesEnd(t *testing.T) {
	a := NewAction()
	a.Duration = 10
	a.Start(actBase)
	a.Chat.WithWhom = "Ayla the Huntress"

	// Chat set but timer not yet started: never finished, even long
	// after the generic duration.
	if a.IsFinished(actBase.Add(time.Hour)) {
		t.Fatal("chat without a started timer reported finished")
	}

	a.Chat.EndTime = actBase.Add(5 * time.Minute)
	if a.IsFinished(actBase.Add(4 * time.Minute)) {
		t.Fatal("chat finished before its timer")
	}
	if !a.IsFinished(actBase.Add(5 * time.Minute)) {
		t.Fatal("chat not finished at its timer")
	}
}

func TestActionNeverStartedNeverFinishes(t *testing.T) {
	a := NewAction()
	a.Duration = 1
	if a.IsFinished(actBase.AddDate(1, 0, 0)) {
		t.Fatal("unstarted action reported finished")
	}
}

func TestActionSummary(t *testing.T) {
	a := NewAction()
	if got := a.Summary(); got != "No current action." {
		t.Fatalf("Summary=%q", got)
	}
	a.Description = "farming the field"
	a.Address = "Greenhollow:Farm:Field"
	a.Duration = 30
	a.Event = world.NewEvent("Thomas the Farmer", "is", "farming", "farming the field")
	a.Start(actBase)
	got := a.Summary()
	for _, want := range []string{"Thomas the Farmer", "farming the field", "Greenhollow:Farm:Field", "30 min"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Summary=%q missing %q", got, want)
		}
	}
}
