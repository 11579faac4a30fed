package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level, format and destination of the standard logger.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is stdout, stderr or a file path.
	Output string `yaml:"output"`
}

// Init configures the logrus standard logger from cfg. Invalid values fall
// back to info, text and stdout with a warning.
func Init(cfg Config) {
	Apply(logrus.StandardLogger(), cfg)
}

// Apply configures logger from cfg.
func Apply(logger *logrus.Logger, cfg Config) {
	level, err := logrus.ParseLevel(firstNonEmpty(cfg.Level, "info"))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	var output io.Writer
	switch strings.ToLower(firstNonEmpty(cfg.Output, "stdout")) {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Warnf("Failed to open log file '%s', using 'stdout' instead. Error: %v", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}
	logger.SetOutput(output)

	logger.WithFields(logrus.Fields{"level": level.String(), "format": strings.ToLower(firstNonEmpty(cfg.Format, "text"))}).Debug("logger initialized")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
