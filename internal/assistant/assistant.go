package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"launchpad/internal/llmclient"
)

// PhaseChat tags oracle calls made for chat replies.
const PhaseChat = "chat"

// DefaultMaxHistory is the number of prior messages resent per turn.
const DefaultMaxHistory = 40

// DefaultLanguage is the reply language when none is configured.
const DefaultLanguage = "English"

// Fixed replies. Reply never returns an error; these stand in for one.
const (
	ReplyUnreachable = "Sorry, I can't reach the ESA AI assistant (Gemini) right now. Please check the API key or try again later."
	ReplyNoMessage   = "Sorry, no message was received."
	ReplyNoContent   = "Sorry, I didn't generate any content."
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of an append-only conversation.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage stamps content with the current time in milliseconds.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content, Timestamp: time.Now().UnixMilli()}
}

// Options configures an Assistant.
type Options struct {
	// MaxHistory bounds the prior messages sent with each turn; 0 sends
	// the whole conversation.
	MaxHistory int
	// Language is the reply language named in the system instruction.
	Language string
}

// Assistant answers deployment questions. It keeps no state between calls.
type Assistant struct {
	llm        llmclient.LLMClient
	maxHistory int
	system     string
}

func New(llm llmclient.LLMClient, opts Options) *Assistant {
	return &Assistant{
		llm:        llm,
		maxHistory: max(opts.MaxHistory, 0),
		system:     SystemPrompt(opts.Language),
	}
}

// SystemPrompt is the fixed instruction sent with every chat turn.
func SystemPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`You are the ESA LaunchPad AI assistant, an expert in Alibaba Cloud ESA (Edge Security Acceleration).
Your goal is to help users deploy front-end applications to ESA Pages and write Edge Functions.

Key knowledge from the ESA handbook:
1. ESA offers "Pages" for static/SPA hosting and "Edge Functions" for dynamic logic.
2. Configuration is best managed through an 'esa.jsonc' file at the repository root.
3. 'esa.jsonc' fields: name, entry (function entry path), installCommand, buildCommand, assets (directory, notFoundStrategy).
4. For single page apps (React/Vue), 'notFoundStrategy' must be 'singlePageApplication'.
5. Edge KV provides edge storage. Constructor: 'new EdgeKV({namespace: "ns"})'. API: get, put, delete (all async).
6. Deployment flow: import the GitHub repository -> ESA console -> Edge Functions and Pages -> Create.
7. When 'esa.jsonc' exists, the console fills in the build settings automatically.

Reply in %s. Be concise, professional and helpful. Always recommend keeping 'esa.jsonc' under version control.`, language)
}

// Reply returns the assistant's answer to the last message of msgs.
// Earlier messages are sent as history, bounded by MaxHistory.
func (a *Assistant) Reply(ctx context.Context, msgs []ChatMessage) string {
	if len(msgs) == 0 || strings.TrimSpace(msgs[len(msgs)-1].Content) == "" {
		return ReplyNoMessage
	}
	if a.llm == nil {
		return ReplyUnreachable
	}
	last := msgs[len(msgs)-1]
	history := toTurns(a.bound(msgs[:len(msgs)-1]))

	out, err := a.llm.Chat(llmclient.WithPhase(ctx, PhaseChat), llmclient.ChatRequest{
		System:  a.system,
		History: history,
		Message: last.Content,
	})
	if err != nil {
		logrus.WithError(err).WithField("history", len(history)).Warn("chat oracle unreachable")
		return ReplyUnreachable
	}
	if strings.TrimSpace(out) == "" {
		return ReplyNoContent
	}
	return out
}

// bound keeps the most recent maxHistory messages. A cut history is
// advanced to its first user turn so it never opens mid-exchange.
func (a *Assistant) bound(prior []ChatMessage) []ChatMessage {
	if a.maxHistory == 0 || len(prior) <= a.maxHistory {
		return prior
	}
	prior = prior[len(prior)-a.maxHistory:]
	for len(prior) > 0 && prior[0].Role != RoleUser {
		prior = prior[1:]
	}
	return prior
}

func toTurns(msgs []ChatMessage) []llmclient.Turn {
	turns := make([]llmclient.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := llmclient.RoleUser
		if m.Role == RoleAssistant {
			role = llmclient.RoleModel
		}
		turns = append(turns, llmclient.Turn{Role: role, Text: m.Content})
	}
	return turns
}
