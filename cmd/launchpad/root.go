package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/internal/diagnosis"
	"launchpad/internal/gateway/app"
	"launchpad/internal/gateway/config"
	"launchpad/internal/logging"
	"launchpad/internal/util/jsonutil"
)

var logLevel string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launchpad",
		Short: "Prepare a GitHub repository for ESA Pages deployment",
		Long: `Diagnose a front-end repository, synthesize the missing ESA platform files,
print the console checklist, and chat with the deployment assistant.

Configuration is read from .env, the YAML file named by LAUNCHPAD_CONFIG,
and the environment (GEMINI_API_KEY, GITHUB_TOKEN, ...).`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// loadConfig reads configuration the way the gateway does, minus flag
// parsing, and initialises logging. CLI output owns stdout, so logs go to
// stderr unless configured otherwise.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.Logging.Level = logLevel
	}
	if strings.EqualFold(cfg.Logging.Output, "stdout") {
		cfg.Logging.Output = "stderr"
	}
	logging.Init(cfg.Logging)
	return cfg, nil
}

func openCore(ctx context.Context) (*app.Core, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return core, cfg, nil
}

// diagnose runs one diagnosis for repoURL with a fresh core.
func diagnose(ctx context.Context, repoURL string) (diagnosis.Result, error) {
	core, _, err := openCore(ctx)
	if err != nil {
		return diagnosis.Result{}, err
	}
	defer core.Close()
	return core.Diagnoser.Diagnose(ctx, repoURL)
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}
