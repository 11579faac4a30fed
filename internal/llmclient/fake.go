package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// FakeRequest records one call made against a FakeClient.
type FakeRequest struct {
	Phase   string
	Prompt  string
	Input   any
	History []Turn
}

// FakeClient returns scripted payloads per phase for offline use and tests.
// Unscripted JSON phases fail with ErrNotConfigured so callers exercise
// their fallback paths; unscripted chat echoes the message.
type FakeClient struct {
	mu       sync.Mutex
	json     map[string]string
	replies  map[string]string
	errs     map[string]error
	requests []FakeRequest
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		json:    make(map[string]string),
		replies: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// ScriptJSON sets the raw text returned by GenerateJSON for phase.
func (f *FakeClient) ScriptJSON(phase, raw string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.json[phase] = raw
	return f
}

// ScriptReply sets the text returned by Chat for phase.
func (f *FakeClient) ScriptReply(phase, text string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[phase] = text
	return f
}

// ScriptError makes every call in phase fail with err.
func (f *FakeClient) ScriptError(phase string, err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[phase] = err
	return f
}

// Requests returns a copy of the recorded calls.
func (f *FakeClient) Requests() []FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeRequest(nil), f.requests...)
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, FakeRequest{Phase: phase, Prompt: prompt, Input: input})
	if err := f.errs[phase]; err != nil {
		return nil, err
	}
	raw, ok := f.json[phase]
	if !ok {
		return nil, fmt.Errorf("%w: fake has no script for phase %q", ErrNotConfigured, phase)
	}
	return json.RawMessage(raw), nil
}

func (f *FakeClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, FakeRequest{
		Phase:   phase,
		Prompt:  req.Message,
		Input:   req.System,
		History: append([]Turn(nil), req.History...),
	})
	if err := f.errs[phase]; err != nil {
		return "", err
	}
	if reply, ok := f.replies[phase]; ok {
		return reply, nil
	}
	return "[fake] " + req.Message, nil
}
