package agents

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Response parsers for generated text. Each shape is parsed by its own
// function so malformed output degrades to a named default locally and
// the parsers stay independently testable.

// DayBlock is one contiguous span of a daily plan, in minutes from
// midnight. End may be 1440 (midnight at the end of the day).
type DayBlock struct {
	Start int
	End   int
	Task  string
}

const minutesPerDay = 24 * 60

var (
	bulletRe    = regexp.MustCompile(`^[•\-\*]+\s*`)
	dayBlockRe  = regexp.MustCompile(`^\s*([0-2]?\d\s*:\s*\S+)\s*-\s*([0-2]?\d\s*:\s*\S+)\s*:\s*(.+)$`)
	clockRe     = regexp.MustCompile(`^(\d{1,2})\s*:\s*([0-5]?\d)`)
	taskPrefix  = regexp.MustCompile(`^[\-\*\d\).\s]+`)
	labelPrefix = regexp.MustCompile(`(?i)^(?:answer|summary|response)\s*:\s*`)
)

// ParseClock reads a tolerant "HH:MM" token, ignoring trailing junk
// after the minutes. Returns minutes from midnight.
func ParseClock(token string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, fmt.Errorf("unparseable clock token %q", token)
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 {
		return 0, fmt.Errorf("hour out of range in %q", token)
	}
	return hh*60 + mm, nil
}

// FormatClock renders minutes from midnight as "HH:MM"; 1440 renders
// as "24:00".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDayBlocks extracts "HH:MM-HH:MM: task" lines from generated day
// plan text. Malformed lines are skipped with a log line. A block whose
// end is at or before its start is read as crossing midnight and split
// into two blocks: start→24:00 and 00:00→end.
func ParseDayBlocks(text string) []DayBlock {
	var blocks []DayBlock
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.NewReplacer("—", "-", "–", "-", "−", "-").Replace(line)

		m := dayBlockRe.FindStringSubmatch(line)
		if m == nil {
			slog.Warn("malformed day block line", "line", raw)
			continue
		}
		start, err1 := ParseClock(m[1])
		end, err2 := ParseClock(m[2])
		if err1 != nil || err2 != nil {
			slog.Warn("malformed time in day block line", "line", raw)
			continue
		}
		task := strings.TrimSpace(m[3])

		if end <= start {
			// Crosses midnight: keep both halves of the block.
			blocks = append(blocks, DayBlock{Start: start, End: minutesPerDay, Task: task})
			if end > 0 {
				blocks = append(blocks, DayBlock{Start: 0, End: end, Task: task})
			}
			continue
		}
		blocks = append(blocks, DayBlock{Start: start, End: end, Task: task})
	}
	if len(blocks) == 0 {
		slog.Warn("no valid day blocks parsed")
	}
	return blocks
}

// BuildHourlySchedule bins day blocks into 24 one-hour slots. Hours not
// covered by any block are filled with "Sleeping".
func BuildHourlySchedule(blocks []DayBlock) []HourTask {
	hourly := make([]HourTask, 24)
	for h := 0; h < 24; h++ {
		hourly[h] = HourTask{Hour: h, Task: "Sleeping"}
		binStart, binEnd := h*60, (h+1)*60
		for _, b := range blocks {
			if b.End > binStart && b.Start < binEnd {
				hourly[h].Task = b.Task
				break
			}
		}
	}
	return hourly
}

// ParseMicrotasks splits generated microtask text into clean task
// strings, stripping bullets and numbering.
func ParseMicrotasks(text string) []string {
	var tasks []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = taskPrefix.ReplaceAllString(line, "")
		if line != "" {
			tasks = append(tasks, line)
		}
	}
	return tasks
}

// ParseEventTriples reads "(subject, predicate, object)" lines.
// Malformed lines are skipped.
func ParseEventTriples(text string) [][3]string {
	var triples [][3]string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
			continue
		}
		parts := strings.Split(strings.Trim(line, "() "), ",")
		if len(parts) != 3 {
			slog.Warn("malformed event triple", "line", line)
			continue
		}
		var t [3]string
		for i, p := range parts {
			t[i] = strings.Trim(strings.TrimSpace(p), `"`)
		}
		triples = append(triples, t)
	}
	return triples
}

// ParseConversation reads "Speaker: utterance" lines, capped at
// maxTurns.
func ParseConversation(text string, maxTurns int) [][2]string {
	var convo [][2]string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		speaker, utterance, _ := strings.Cut(line, ":")
		convo = append(convo, [2]string{strings.TrimSpace(speaker), strings.TrimSpace(utterance)})
		if len(convo) == maxTurns {
			break
		}
	}
	return convo
}

// StripLabel removes a leading "answer:" / "summary:" / "response:"
// label from a generated reply.
func StripLabel(text string) string {
	return strings.TrimSpace(labelPrefix.ReplaceAllString(strings.TrimSpace(text), ""))
}

// PickOption resolves a raw generated reply to one of the allowed
// options: exact case-insensitive match first, then substring match
// preferring longer options, then the fallback.
func PickOption(raw string, options []string, fallback string) string {
	if len(options) == 0 {
		if fallback != "" {
			return fallback
		}
		return "here"
	}

	norm := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `{}[]()"`))
	for _, opt := range options {
		if strings.EqualFold(norm, opt) {
			return opt
		}
	}

	sorted := append([]string(nil), options...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) > len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	lower := strings.ToLower(raw)
	for _, opt := range sorted {
		if strings.Contains(lower, strings.ToLower(opt)) {
			return opt
		}
	}

	if fallback != "" {
		return fallback
	}
	return sorted[len(sorted)-1]
}

// ParseSignificance reads a 1.0–10.0 significance score from generated
// text, clamping into range.
func ParseSignificance(raw string) (float64, error) {
	fields := strings.Fields(strings.TrimLeft(strings.TrimSpace(raw), "> "))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty significance reply")
	}
	score, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable significance %q: %w", raw, err)
	}
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score, nil
}
