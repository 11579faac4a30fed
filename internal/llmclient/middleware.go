package llmclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns.
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Logging --------

// WithLogging logs request size, latency and errors per phase. A nil
// logger uses the logrus standard logger.
func WithLogging(logger *logrus.Logger) Middleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *logrus.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	entry := l.log.WithFields(logrus.Fields{
		"client": l.next.Name(),
		"phase":  PhaseFrom(ctx),
		"bytes":  len(prompt) + len(in),
	})
	entry.Debug("llm request")
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	entry = entry.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		entry.WithError(err).Warn("llm error")
		return raw, err
	}
	entry.WithField("response_bytes", len(raw)).Debug("llm response")
	return raw, nil
}

func (l *logging) Chat(ctx context.Context, req ChatRequest) (string, error) {
	entry := l.log.WithFields(logrus.Fields{
		"client":  l.next.Name(),
		"phase":   PhaseFrom(ctx),
		"history": len(req.History),
	})
	entry.Debug("llm chat request")
	start := time.Now()
	out, err := l.next.Chat(ctx, req)
	entry = entry.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		entry.WithError(err).Warn("llm chat error")
	}
	return out, err
}

// -------- Hooks --------

// WithHooks calls HookFrom(ctx).Before/After around every call.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next LLMClient) LLMClient {
		return &hooked{next: next}
	}
}

type hooked struct{ next LLMClient }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if hook := HookFrom(ctx); hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), prompt, input)
	}
	raw, err := h.next.GenerateJSON(ctx, prompt, input)
	if hook := HookFrom(ctx); hook != nil {
		hook.After(ctx, PhaseFrom(ctx), raw, err)
	}
	return raw, err
}

func (h *hooked) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if hook := HookFrom(ctx); hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), req.Message, req.History)
	}
	out, err := h.next.Chat(ctx, req)
	if hook := HookFrom(ctx); hook != nil {
		var raw json.RawMessage
		if err == nil {
			raw, _ = json.Marshal(out)
		}
		hook.After(ctx, PhaseFrom(ctx), raw, err)
	}
	return out, err
}
