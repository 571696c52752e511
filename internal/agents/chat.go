package agents

import (
	"log/slog"
	"strings"

	"github.com/talgya/hamlet/internal/llm"
)

// DefaultMaxChatTurns bounds generated conversations.
const DefaultMaxChatTurns = 6

// ChatManager generates and summarizes conversations between agents.
type ChatManager struct {
	Gen      llm.Generator
	MaxTurns int
}

// NewChatManager creates a chat manager. Gen may be nil; conversations
// are then empty and summaries generic.
func NewChatManager(gen llm.Generator) *ChatManager {
	return &ChatManager{Gen: gen, MaxTurns: DefaultMaxChatTurns}
}

// GenerateConversation produces up to MaxTurns (speaker, utterance)
// pairs between the agent and the target.
func (c *ChatManager) GenerateConversation(a *Agent, target string) [][2]string {
	if c.Gen == nil {
		return nil
	}
	raw, err := c.Gen.Generate(buildConversationPrompt(a, target, c.MaxTurns),
		llm.Options{MaxTokens: 300, Stop: []string{"</conversation>"}})
	if err != nil {
		slog.Debug("conversation generation failed", "agent", a.Name, "target", target, "error", err)
		return nil
	}
	convo := ParseConversation(raw, c.MaxTurns)
	slog.Debug("generated conversation", "agent", a.Name, "target", target, "lines", len(convo))
	return convo
}

// SummarizeConversation condenses a conversation to one line.
func (c *ChatManager) SummarizeConversation(a *Agent, convo [][2]string) string {
	fallback := a.Name + " had a brief conversation."
	if c.Gen == nil || len(convo) == 0 {
		return fallback
	}
	var b strings.Builder
	for _, line := range convo {
		b.WriteString(line[0])
		b.WriteString(": ")
		b.WriteString(line[1])
		b.WriteString("\n")
	}
	raw, err := c.Gen.Generate(buildConversationSummaryPrompt(a, b.String()),
		llm.Options{MaxTokens: 120, Stop: []string{"\n", "</summary>"}})
	if err != nil {
		slog.Debug("conversation summary failed", "agent", a.Name, "error", err)
		return fallback
	}
	summary := StripLabel(raw)
	if summary == "" {
		return fallback
	}
	return summary
}
