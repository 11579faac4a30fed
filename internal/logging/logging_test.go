package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestApplyWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger := logrus.New()
	Apply(logger, Config{Level: "debug", Format: "json", Output: path})

	logger.WithField("repo", "acme/web").Info("diagnosis inferred")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"diagnosis inferred"`) || !strings.Contains(out, `"repo":"acme/web"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", logger.GetLevel())
	}
}

func TestApplyInvalidLevelFallsBackToInfo(t *testing.T) {
	logger := logrus.New()
	Apply(logger, Config{Level: "loud", Output: "stderr"})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("formatter = %T, want text", logger.Formatter)
	}
}
