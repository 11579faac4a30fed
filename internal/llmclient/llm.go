package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model produced no candidates.
	ErrEmptyResponse = errors.New("llm: empty response from model")
	// ErrNotConfigured is returned by clients that cannot reach a provider.
	ErrNotConfigured = errors.New("llm: provider is not configured")
)

// Roles used in chat history. The provider labels the assistant side
// "model".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged entry of a chat history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest carries a full conversation turn: a fixed system instruction,
// the prior history and the new user message.
type ChatRequest struct {
	System  string
	History []Turn
	Message string
}

// LLMClient is the text-completion oracle. Implementations make exactly one
// provider call per method invocation.
type LLMClient interface {
	Name() string
	// GenerateJSON sends prompt as the instruction and input as the request
	// data, and asks for a JSON reply.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	// Chat returns the model's reply text for req.
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Close() error
}
