package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"launchpad/internal/gateway/config"
	"launchpad/internal/gateway/handler"
	"launchpad/internal/gateway/handler/rpc"
	"launchpad/internal/gateway/repository/artifact"
	"launchpad/internal/gateway/repository/session"
	"launchpad/internal/gateway/server"
	wizardsvc "launchpad/internal/gateway/service/wizard"
	"launchpad/internal/logging"
)

type App struct {
	server *server.Server
	core   *Core
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logging.Init(cfg.Logging)

	core, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	artifacts, err := newArtifactStore(cfg)
	if err != nil {
		_ = core.Close()
		return nil, err
	}

	// Dependencies
	var svc *wizardsvc.Service
	sessions := session.New(cfg.Session.CacheSize, cfg.Session.TTL, func(id string) {
		if svc != nil {
			svc.Forget(id)
		}
	})
	svc = wizardsvc.New(wizardsvc.Deps{
		Sessions:  sessions,
		Artifacts: artifacts,
		Diagnoser: core.Diagnoser,
		Assistant: core.Assistant,
	})

	wizardHandler := rpc.NewWizardHandler(svc)
	chatHandler := rpc.NewChatHandler(svc)
	bundleHandler := handler.NewBundleHandler(svc)

	// Routing & Server
	mux := server.NewMux(wizardHandler, chatHandler, bundleHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		core:   core,
	}, nil
}

func newArtifactStore(cfg *config.Config) (artifact.Store, error) {
	if !cfg.Artifact.Enabled {
		logrus.Info("artifact store: memory")
		return artifact.NewMemoryStore(), nil
	}
	s3Cfg := artifact.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
	}
	store, err := artifact.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"bucket":   s3Cfg.Bucket,
		"endpoint": s3Cfg.Endpoint,
	}).Info("artifact store: s3")
	return store, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.core.Close(); cerr != nil {
		logrus.WithError(cerr).Warn("close llm clients failed")
	}
	return err
}
