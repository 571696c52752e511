package agents

import (
	"reflect"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"06:00", 360, false},
		{"6:30", 390, false},
		{"23 : 59", 1439, false},
		{"08:15am", 495, false}, // trailing junk ignored
		{"24:00", 0, true},
		{"noonish", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseClock(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseClock(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseClock(%q)=%d want=%d", tc.in, got, tc.want)
		}
	}
}

func TestParseDayBlocks(t *testing.T) {
	text := `06:00 - 07:00: wake up and wash
- 07:00 — 12:00: work the field
not a schedule line
12:00 - 13:00: lunch at the tavern`

	got := ParseDayBlocks(text)
	want := []DayBlock{
		{Start: 360, End: 420, Task: "wake up and wash"},
		{Start: 420, End: 720, Task: "work the field"},
		{Start: 720, End: 780, Task: "lunch at the tavern"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseDayBlocks=%v want=%v", got, want)
	}
}

func TestParseDayBlocksMidnightCrossing(t *testing.T) {
	got := ParseDayBlocks("22:00 - 02:00: night watch")
	want := []DayBlock{
		{Start: 1320, End: 1440, Task: "night watch"},
		{Start: 0, End: 120, Task: "night watch"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("crossing block=%v want split %v", got, want)
	}

	// Ending exactly at midnight produces only the first half.
	got = ParseDayBlocks("22:00 - 00:00: night watch")
	want = []DayBlock{{Start: 1320, End: 1440, Task: "night watch"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("midnight-end block=%v want=%v", got, want)
	}
}

func TestBuildHourlySchedule(t *testing.T) {
	blocks := []DayBlock{
		{Start: 360, End: 480, Task: "morning chores"},
		{Start: 480, End: 720, Task: "field work"},
	}
	hourly := BuildHourlySchedule(blocks)
	if len(hourly) != 24 {
		t.Fatalf("hours=%d want=24", len(hourly))
	}
	tests := []struct {
		hour int
		want string
	}{
		{0, "Sleeping"},
		{6, "morning chores"},
		{7, "morning chores"},
		{8, "field work"},
		{11, "field work"},
		{12, "Sleeping"},
		{23, "Sleeping"},
	}
	for _, tc := range tests {
		if got := hourly[tc.hour].Task; got != tc.want {
			t.Errorf("hour %d: %q want %q", tc.hour, got, tc.want)
		}
	}
}

func TestParseEventTriples(t *testing.T) {
	text := `(Thomas, harvests, wheat)
junk line
("Ayla", "tracks", "deer")
(too, few)
`
	got := ParseEventTriples(text)
	want := [][3]string{
		{"Thomas", "harvests", "wheat"},
		{"Ayla", "tracks", "deer"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseEventTriples=%v want=%v", got, want)
	}
}

func TestParseMicrotasks(t *testing.T) {
	got := ParseMicrotasks("1. fetch water\n- light the stove\n\n2) knead dough")
	want := []string{"fetch water", "light the stove", "knead dough"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseMicrotasks=%v want=%v", got, want)
	}
}

func TestParseConversation(t *testing.T) {
	text := `Thomas the Farmer: Morning, Garrick.
Garrick the Innkeeper: Morning! Ale's fresh.
no colon here
Thomas the Farmer: Maybe later.`

	got := ParseConversation(text, 2)
	if len(got) != 2 {
		t.Fatalf("turns=%d want=2 (cap)", len(got))
	}
	if got[0][0] != "Thomas the Farmer" || got[0][1] != "Morning, Garrick." {
		t.Fatalf("first turn=%v", got[0])
	}
}

func TestPickOption(t *testing.T) {
	options := []string{"Tavern Hall", "Field", "Forest Edge"}
	tests := []struct {
		raw  string
		want string
	}{
		{"Field", "Field"},
		{"field", "Field"},
		{`"Tavern Hall"`, "Tavern Hall"},
		{"I would go to the forest edge first.", "Forest Edge"},
		{"somewhere else entirely", "Field"}, // shortest option as last resort
	}
	for _, tc := range tests {
		if got := PickOption(tc.raw, options, ""); got != tc.want {
			t.Errorf("PickOption(%q)=%q want=%q", tc.raw, got, tc.want)
		}
	}
	if got := PickOption("anything", options, "Field"); got != "Field" {
		t.Errorf("fallback not honored: got %q", got)
	}
	if got := PickOption("x", nil, ""); got != "here" {
		t.Errorf("no options: got %q want here", got)
	}
}

func TestParseSignificance(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"7", 7, false},
		{"3.5 because routine", 3.5, false},
		{"> 12", 10, false},
		{"0.2", 1, false},
		{"", 0, true},
		{"very important", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseSignificance(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseSignificance(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseSignificance(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestStripLabel(t *testing.T) {
	if got := StripLabel("Answer: 6 o'clock"); got != "6 o'clock" {
		t.Fatalf("StripLabel=%q", got)
	}
	if got := StripLabel("  plain text  "); got != "plain text" {
		t.Fatalf("StripLabel=%q", got)
	}
}
