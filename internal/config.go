package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in config
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

const (
	DefaultChatModel   = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config is loaded from config.yaml, then environment, then command-line flags
type Config struct {
	Provider string        `yaml:"provider"`
	Storage  StorageConfig `yaml:"storage"`
	Gemini   GeminiConfig  `yaml:"gemini"`
	OpenAI   OpenAIConfig  `yaml:"openai"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

type StorageConfig struct {
	Dir         string `yaml:"dir"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path,omitempty"` // explicit database file, overrides Dir
	RedisURL    string `yaml:"redis_url,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

type GeminiConfig struct {
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	ChatModel  string `yaml:"chat_model"`
	ImageModel string `yaml:"image_model"`
}

type OpenAIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
}

type MetricsConfig struct {
	Pushgateway string `yaml:"pushgateway,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig(paths StoragePaths) *Config {
	return &Config{
		Provider: ProviderGemini,
		Storage: StorageConfig{
			Dir:         paths.BasePath,
			Backend:     BackendSQLite,
			RedisPrefix: DefaultRedisPrefix,
		},
		Gemini: GeminiConfig{
			ChatModel:  DefaultChatModel,
			ImageModel: DefaultImageModel,
		},
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
	}
}

// LoadConfig reads paths.ConfigFile if present and applies environment overrides
func LoadConfig(paths StoragePaths) (*Config, error) {
	cfg := DefaultConfig(paths)

	data, err := os.ReadFile(paths.ConfigFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		LogDebug("No config file at %s, using defaults", paths.ConfigFile)
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", paths.ConfigFile, err)
		}
	}

	cfg.applyEnv()
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = paths.BasePath
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	for _, name := range []string{"GUJJAR_GPT_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			c.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("GUJJAR_GPT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("GUJJAR_GPT_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("GUJJAR_GPT_PROMETHEUS_PUSHGATEWAY"); v != "" {
		c.Metrics.Pushgateway = v
	}
}

// DatabasePath returns Storage.Path when set, otherwise fallback
func (c *Config) DatabasePath(fallback string) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return fallback
}

// Save writes the config as YAML. API keys are omitted.
func (c *Config) Save(path string) error {
	out := *c
	out.Gemini.APIKey = ""
	out.OpenAI.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
