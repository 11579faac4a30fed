package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"launchpad/internal/assistant"
	"launchpad/internal/diagnosis"
	"launchpad/internal/gateway/config"
	"launchpad/internal/llmclient"
	"launchpad/internal/source"
)

// Core holds the oracle-backed components shared by the gateway and the
// command line.
type Core struct {
	Fetcher   *source.Fetcher
	Diagnoser *diagnosis.Diagnoser
	Assistant *assistant.Assistant

	clients []llmclient.LLMClient
}

// NewCore builds one oracle client per role so diagnosis and chat can use
// different models.
func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	fetcher, err := source.NewFetcher(source.Options{
		BaseURL: cfg.GitHub.APIURL,
		Token:   cfg.GitHub.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init github fetcher: %w", err)
	}

	mws := []llmclient.Middleware{llmclient.WithLogging(logrus.StandardLogger()), llmclient.WithHooks()}
	diagLLM, err := llmclient.New(ctx, llmclient.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.DiagnosisModel,
	}, mws...)
	if err != nil {
		return nil, fmt.Errorf("failed to init diagnosis llm: %w", err)
	}
	chatLLM, err := llmclient.New(ctx, llmclient.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.ChatModel,
	}, mws...)
	if err != nil {
		_ = diagLLM.Close()
		return nil, fmt.Errorf("failed to init chat llm: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"diagnosis": diagLLM.Name(),
		"chat":      chatLLM.Name(),
	}).Info("llm clients ready")

	return &Core{
		Fetcher:   fetcher,
		Diagnoser: diagnosis.New(fetcher, diagLLM),
		Assistant: assistant.New(chatLLM, assistant.Options{
			MaxHistory: cfg.Chat.MaxHistory,
			Language:   cfg.Chat.Language,
		}),
		clients: []llmclient.LLMClient{diagLLM, chatLLM},
	}, nil
}

func (c *Core) Close() error {
	var errs []error
	for _, cl := range c.clients {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
