// Package config loads service configuration from an optional YAML file with
// SB_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	infcfg "github.com/yungbote/shariabridge-backend/internal/inference/config"
)

const (
	envPrefix      = "SB"
	configPathEnv  = "SB_CONFIG_PATH"
	defaultDir     = "./config"
	defaultName    = "config"
	DefaultModelID = "sharia-mock"
)

type Config struct {
	Env       string               `mapstructure:"env"`
	Log       LogConfig            `mapstructure:"log"`
	HTTP      HTTPConfig           `mapstructure:"http"`
	Assistant AssistantConfig      `mapstructure:"assistant"`
	Models    []infcfg.ModelConfig `mapstructure:"models"`
	Search    SearchConfig         `mapstructure:"search"`
	Realtime  RealtimeConfig       `mapstructure:"realtime"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type AssistantConfig struct {
	Model            string `mapstructure:"model"`
	SearchDefault    bool   `mapstructure:"search_default"`
	ReasoningDefault bool   `mapstructure:"reasoning_default"`
	HistoryWindow    int    `mapstructure:"history_window"`

	// MaxHistory and MaxTopics bound the knowledge model; zero keeps
	// everything for the life of the session.
	MaxHistory int `mapstructure:"max_history"`
	MaxTopics  int `mapstructure:"max_topics"`
}

type SearchConfig struct {
	// Retriever is "noop" or "brave".
	Retriever    string        `mapstructure:"retriever"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	BraveBaseURL string        `mapstructure:"brave_base_url"`
	MinInterval  time.Duration `mapstructure:"min_interval"`
	CatalogPath  string        `mapstructure:"catalog_path"`
}

type RealtimeConfig struct {
	Bus          string `mapstructure:"bus"`
	RedisAddr    string `mapstructure:"redis_addr"`
	RedisChannel string `mapstructure:"redis_channel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("assistant.model", DefaultModelID)
	v.SetDefault("assistant.search_default", true)
	v.SetDefault("assistant.reasoning_default", true)
	v.SetDefault("assistant.history_window", 15)
	v.SetDefault("assistant.max_history", 0)
	v.SetDefault("assistant.max_topics", 0)
	v.SetDefault("search.retriever", "noop")
	v.SetDefault("search.brave_api_key", "")
	v.SetDefault("search.brave_base_url", "")
	v.SetDefault("search.min_interval", time.Second)
	v.SetDefault("search.catalog_path", "")
	v.SetDefault("realtime.bus", "memory")
	v.SetDefault("realtime.redis_addr", "")
	v.SetDefault("realtime.redis_channel", "shariabridge:sse")
}

// Load reads path, or SB_CONFIG_PATH, or ./config/config.yaml. Only an
// explicitly named file is required to exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("log.mode", "SB_LOG_MODE", "LOG_MODE"); err != nil {
		return nil, fmt.Errorf("bind log mode: %w", err)
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultName)
		v.AddConfigPath(defaultDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes cfg in place. With no models configured a single mock
// model is registered so the service runs without upstream credentials.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		c.Models = []infcfg.ModelConfig{{ID: DefaultModelID, Engine: infcfg.EngineConfig{Type: "mock"}}}
	}
	if err := infcfg.Normalize(c.Models); err != nil {
		return fmt.Errorf("models: %w", err)
	}
	c.Assistant.Model = strings.TrimSpace(c.Assistant.Model)
	found := false
	for _, m := range c.Models {
		if m.ID == c.Assistant.Model {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("assistant.model %q is not a configured model", c.Assistant.Model)
	}
	if c.Assistant.HistoryWindow <= 0 {
		return errors.New("assistant.history_window must be positive")
	}
	if c.Assistant.MaxHistory < 0 || c.Assistant.MaxTopics < 0 {
		return errors.New("assistant.max_history and assistant.max_topics must not be negative")
	}

	c.Search.Retriever = strings.ToLower(strings.TrimSpace(c.Search.Retriever))
	switch c.Search.Retriever {
	case "", "noop", "none":
		c.Search.Retriever = "noop"
	case "brave":
		if strings.TrimSpace(c.Search.BraveAPIKey) == "" {
			return errors.New("search.brave_api_key is required for the brave retriever")
		}
	default:
		return fmt.Errorf("unsupported search.retriever %q", c.Search.Retriever)
	}

	c.Realtime.Bus = strings.ToLower(strings.TrimSpace(c.Realtime.Bus))
	switch c.Realtime.Bus {
	case "", "memory":
		c.Realtime.Bus = "memory"
	case "redis":
		if strings.TrimSpace(c.Realtime.RedisAddr) == "" {
			return errors.New("realtime.redis_addr is required for the redis bus")
		}
	default:
		return fmt.Errorf("unsupported realtime.bus %q", c.Realtime.Bus)
	}

	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 15 * time.Second
	}
	return nil
}
