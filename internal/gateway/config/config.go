package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"launchpad/internal/logging"
)

type Config struct {
	Port     string         `yaml:"port"`
	Env      string         `yaml:"env"`
	LLM      LLMConfig      `yaml:"llm"`
	GitHub   GitHubConfig   `yaml:"github"`
	Chat     ChatConfig     `yaml:"chat"`
	Session  SessionConfig  `yaml:"session"`
	Artifact ArtifactConfig `yaml:"artifact"`
	Logging  logging.Config `yaml:"logging"`
}

type LLMConfig struct {
	// Provider is gemini or fake; empty picks gemini when APIKey is set.
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	DiagnosisModel string `yaml:"diagnosis_model"`
	ChatModel      string `yaml:"chat_model"`
}

type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`
}

type ChatConfig struct {
	MaxHistory int    `yaml:"max_history"`
	Language   string `yaml:"language"`
}

type SessionConfig struct {
	CacheSize int           `yaml:"cache_size"`
	TTL       time.Duration `yaml:"ttl"`
}

type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port: ":8081",
		Env:  "local",
		Chat: ChatConfig{MaxHistory: 40, Language: "English"},
		Session: SessionConfig{
			CacheSize: 1024,
			TTL:       2 * time.Hour,
		},
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Bucket: "launchpad-bundles",
		},
		Logging: logging.Config{Level: "info", Format: "text", Output: "stdout"},
	}
}

// Load reads .env, the optional YAML file named by LAUNCHPAD_CONFIG, the
// environment and finally the command line flags, later sources winning.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	port := flag.String("port", cfg.Port, "server port")
	flag.Parse()
	cfg.Port = NormalizePort(*port)
	return cfg, nil
}

// FromEnv is Load without flag parsing.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("LAUNCHPAD_CONFIG")); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		cfg.Port = envPort
	}
	cfg.Port = NormalizePort(cfg.Port)
	cfg.Env = firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), cfg.Env, "local")

	cfg.LLM.Provider = firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), cfg.LLM.Provider)
	cfg.LLM.APIKey = firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY")), cfg.LLM.APIKey)
	cfg.LLM.DiagnosisModel = firstNonEmpty(strings.TrimSpace(os.Getenv("DIAGNOSIS_MODEL")), cfg.LLM.DiagnosisModel)
	cfg.LLM.ChatModel = firstNonEmpty(strings.TrimSpace(os.Getenv("CHAT_MODEL")), cfg.LLM.ChatModel)

	cfg.GitHub.APIURL = firstNonEmpty(strings.TrimSpace(os.Getenv("GITHUB_API_URL")), cfg.GitHub.APIURL)
	cfg.GitHub.Token = firstNonEmpty(strings.TrimSpace(os.Getenv("GITHUB_TOKEN")), cfg.GitHub.Token)

	var err error
	if cfg.Chat.MaxHistory, err = envInt("CHAT_MAX_HISTORY", cfg.Chat.MaxHistory); err != nil {
		return err
	}
	cfg.Chat.Language = firstNonEmpty(strings.TrimSpace(os.Getenv("REPLY_LANGUAGE")), cfg.Chat.Language)
	if cfg.Session.CacheSize, err = envInt("SESSION_CACHE_SIZE", cfg.Session.CacheSize); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = ttl
	}

	cfg.Artifact = loadArtifactConfig(cfg.Env, cfg.Artifact)

	cfg.Logging.Level = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), cfg.Logging.Level)
	cfg.Logging.Format = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_FORMAT")), cfg.Logging.Format)
	cfg.Logging.Output = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_OUTPUT")), cfg.Logging.Output)
	return nil
}

// loadArtifactConfig enables the S3 bundle store once an endpoint is known.
// Without one, bundles stay in memory.
func loadArtifactConfig(env string, base ArtifactConfig) ArtifactConfig {
	endpoint := firstNonEmpty(resolveArtifactEndpoint(env), base.Endpoint)
	return ArtifactConfig{
		Enabled:   base.Enabled || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), base.Region, "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), base.AccessKey),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), base.SecretKey),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), base.Bucket, "launchpad-bundles"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}

// NormalizePort turns a bare port number into a listen address.
func NormalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
