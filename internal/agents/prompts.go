package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/hamlet/internal/world"
)

// Prompt builders for the cognition pipeline. Each builder renders one
// prompt shape; the matching parser in parser.go reads the reply.

func buildWakeTimePrompt(a *Agent) string {
	return fmt.Sprintf(
		`%s
Given this villager's lifestyle, at what time do they wake up?
Answer with a single clock time in HH:MM format, nothing else.
`, a.Identity())
}

func buildDayBlocksPrompt(a *Agent, wakeTime string, date string) string {
	return fmt.Sprintf(
		`%s
Today is %s. %s wakes up at %s.
Write their plan for the day as blocks, one per line, in the form:
HH:MM-HH:MM: activity

Cover the day from waking until sleep.
`, a.Identity(), date, a.Name, wakeTime)
}

func buildMicrotasksPrompt(a *Agent, scheduleSummary string) string {
	return fmt.Sprintf(
		`%s
%s
Break this activity into 3-5 small concrete steps, one per line.
`, a.Identity(), scheduleSummary)
}

func buildPlacePrompt(a *Agent, level, task string, options []string, current string) string {
	return fmt.Sprintf(
		`%s
%s needs to: %s
They are currently at: %s
Known %ss: %s
Which %s should they go to? Answer with exactly one name from the list.
`, a.Identity(), a.Name, task, current, level, strings.Join(options, ", "), level)
}

func buildEventTriplePrompt(a *Agent, description string) string {
	return fmt.Sprintf(
		`%s
Activity: %s is %s
Express this as a (subject, predicate, object) triple, e.g.
(%s, waters, the garden)
Answer with one triple on its own line.
`, a.Identity(), a.Name, description, a.Name)
}

func buildObjectInteractionPrompt(a *Agent, gameObject, task string) string {
	return fmt.Sprintf(
		`%s
%s is using the %s while %s.
Describe in one short sentence what the %s looks like in use.
`, a.Identity(), a.Name, gameObject, task, gameObject)
}

func buildSignificancePrompt(a *Agent, description string) string {
	return fmt.Sprintf(
		`%s
%s just noticed: %s
On a scale of 1.0 (mundane) to 10.0 (life-changing), how significant is
this to them? Answer with a single number.
`, a.Identity(), a.Name, description)
}

func buildReactionPrompt(a *Agent, e world.Event, memories []string) string {
	var b strings.Builder
	b.WriteString(a.Identity())
	fmt.Fprintf(&b, "%s notices: %s %s %s (%s)\n",
		a.Name, e.Subject, orDefault(e.Predicate, "is"), orDefault(e.Object, "someone"), e.Description)
	if len(memories) > 0 {
		b.WriteString("Relevant memories:\n")
		for _, m := range memories {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	b.WriteString(`Should they react? Answer with exactly one of:
ignore
chat with <name>
wait
move to <place>
observe
help
follow
`)
	return b.String()
}

func buildConversationPrompt(a *Agent, target string, maxTurns int) string {
	return fmt.Sprintf(
		`%s
Write a short conversation (at most %d lines) between %s and %s,
one line per utterance in the form:
Speaker: what they say
`, a.Identity(), maxTurns, a.Name, target)
}

func buildConversationSummaryPrompt(a *Agent, dialogue string) string {
	return fmt.Sprintf(
		`%s
Conversation:
%s
Summarize this conversation in one sentence.
`, a.Identity(), dialogue)
}

func buildInnerThoughtPrompt(a *Agent, whisper string) string {
	return fmt.Sprintf(
		`%s
A quiet inner voice tells %s: %s
Rewrite this as a single first-person thought %s might actually have.
`, a.Identity(), a.Name, whisper, a.Name)
}

func buildStatusRevisionPrompt(a *Agent) string {
	return fmt.Sprintf(
		`%s
A new day is starting. In a few words, what is %s's current state of
mind and body? Answer with a short status phrase only.
`, a.Identity(), a.Name)
}

func buildFocalQuestionsPrompt(a *Agent, statements []string) string {
	return fmt.Sprintf(
		`%s
Recent notable memories:
%s
Given only this, what are the 3 most salient high-level questions %s
could ask about their life right now? One question per line.
`, a.Identity(), "- "+strings.Join(statements, "\n- "), a.Name)
}

func buildInsightPrompt(a *Agent, evidence []string) string {
	return fmt.Sprintf(
		`%s
Evidence:
%s
What single high-level insight can %s draw from this evidence?
Answer with one sentence.
`, a.Identity(), "- "+strings.Join(evidence, "\n- "), a.Name)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
