package patch

import (
	"fmt"
	"strings"

	"launchpad/internal/diagnosis"
	"launchpad/internal/util/jsonutil"
)

const (
	// ConfigPath is where the platform config is written.
	ConfigPath = "/esa.jsonc"
	// DefaultFunctionEntry is the entry used when API routes exist but no
	// function path was detected.
	DefaultFunctionEntry = "./edge-functions/api-proxy.js"
	// DefaultFunctionPath is the stub file location for DefaultFunctionEntry.
	DefaultFunctionPath = "/edge-functions/api-proxy.js"

	NotFoundStrategySPA = "singlePageApplication"
)

// Assets is the static asset block of the platform config.
type Assets struct {
	Directory        string `json:"directory"`
	NotFoundStrategy string `json:"notFoundStrategy,omitempty"`
}

// PlatformConfig is the esa.jsonc document. Field order is the order
// written to disk.
type PlatformConfig struct {
	Name           string `json:"name"`
	BuildCommand   string `json:"buildCommand"`
	InstallCommand string `json:"installCommand"`
	Assets         Assets `json:"assets"`
	Entry          string `json:"entry,omitempty"`
}

// ConfigFor derives the platform config from d.
func ConfigFor(d diagnosis.Diagnosis) PlatformConfig {
	cfg := PlatformConfig{
		Name:           d.ProjectName,
		BuildCommand:   d.BuildCmd,
		InstallCommand: d.InstallCmd,
		Assets:         Assets{Directory: "./" + d.OutputDir},
	}
	if d.IsSpa {
		cfg.Assets.NotFoundStrategy = NotFoundStrategySPA
	}
	if d.HasApiRoutes {
		cfg.Entry = FunctionEntry(d)
	}
	return cfg
}

// FunctionEntry returns the detected function path or the default proxy.
func FunctionEntry(d diagnosis.Diagnosis) string {
	if p := strings.TrimSpace(d.FunctionPath); p != "" {
		return p
	}
	return DefaultFunctionEntry
}

// RenderConfig serialises the config for d as 2-space indented JSON.
func RenderConfig(d diagnosis.Diagnosis) ([]byte, error) {
	return jsonutil.MarshalNoEscapeIndent(ConfigFor(d), "", "  ")
}

// ParseConfig reads an esa.jsonc or esa.json document. Comments are
// allowed.
func ParseConfig(raw []byte) (PlatformConfig, error) {
	var cfg PlatformConfig
	if err := jsonutil.UnmarshalFlex(raw, &cfg); err != nil {
		return PlatformConfig{}, fmt.Errorf("patch: parse platform config: %w", err)
	}
	return cfg, nil
}
