package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider    string            `mapstructure:"provider"`
	Environment string            `mapstructure:"environment"`
	LogLevel    string            `mapstructure:"log_level"`
	Server      ServerConfig      `mapstructure:"server"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Anthropic   AnthropicConfig   `mapstructure:"anthropic"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Personas    PersonasConfig    `mapstructure:"personas"`
	Transcripts TranscriptsConfig `mapstructure:"transcripts"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AuthToken string `mapstructure:"auth_token"` // Optional bearer token for /api routes
}

// BackendConfig points at the platform CRUD API the assistant acts against.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_seconds"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // Any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// PersonasConfig controls where persona definitions are loaded from.
// Built-in personas are always available; Dir adds or overrides them.
type PersonasConfig struct {
	Dir string `mapstructure:"dir"`
}

// TranscriptsConfig controls conversation transcript storage.
type TranscriptsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8321)
	viper.SetDefault("backend.timeout_seconds", 30)
	viper.SetDefault("anthropic.model", "claude-sonnet-4-5")
	viper.SetDefault("openai.model", "gpt-4.1")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("transcripts.enabled", false)

	// Config file is optional, env vars can carry everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveCredentials(&cfg)
	resolveBackend(&cfg.Backend)

	if cfg.Transcripts.Enabled && cfg.Transcripts.DBPath == "" {
		cfg.Transcripts.DBPath = filepath.Join(configPath, "transcripts.db")
	}

	return &cfg, nil
}

// ApplyOverrides applies command-line provider and model overrides.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.Provider = provider
	}
	if model != "" {
		switch c.Provider {
		case "anthropic":
			c.Anthropic.Model = model
		case "openai":
			c.OpenAI.Model = model
		case "gemini":
			c.Gemini.Model = model
		}
	}
}

// IsProduction reports whether the service runs in production mode, which
// tightens backend URL resolution.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func resolveCredentials(cfg *Config) {
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Gemini.APIKey = expandEnv(cfg.Gemini.APIKey)
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.Server.AuthToken = expandEnv(cfg.Server.AuthToken)
}

func resolveBackend(cfg *BackendConfig) {
	cfg.BaseURL = expandEnv(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("CLASSPILOT_BACKEND_URL")
	}
}

// expandEnv expands ${VAR} or $VAR references in config values.
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for classpilot.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "classpilot"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "classpilot"), nil
}
