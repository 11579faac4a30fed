package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"launchpad/internal/gateway/app"
	"launchpad/internal/gateway/config"
	"launchpad/internal/logging"
)

var servePort string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if strings.TrimSpace(logLevel) != "" {
				cfg.Logging.Level = logLevel
			}
			if strings.TrimSpace(servePort) != "" {
				cfg.Port = config.NormalizePort(servePort)
			}
			logging.Init(cfg.Logging)

			a, err := app.NewWithConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- a.Start() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logrus.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&servePort, "port", "", "listen address, e.g. 8081 or :8081")
	return cmd
}
