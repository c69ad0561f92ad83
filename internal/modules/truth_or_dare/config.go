package truth_or_dare

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	PromptStoreSQLite = "sqlite"
	PromptStoreMemory = "memory"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the truth or dare module configuration.
type Config struct {
	SuggestionChannelID string        `env:"SUGGESTION_CHANNEL_ID,notEmpty"`
	PromptStore         string        `env:"PROMPT_STORE" envDefault:"sqlite"`
	DatabasePath        string        `env:"DATABASE_PATH" envDefault:"./data.db"`
	CacheBackend        string        `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisURL            string        `env:"REDIS_URL"`
	CorrelationTTL      time.Duration `env:"CORRELATION_TTL" envDefault:"15m"`
	SuggestionTTL       time.Duration `env:"SUGGESTION_TTL" envDefault:"168h"`
	TriviaAPIURL        string        `env:"TRIVIA_API_URL" envDefault:"https://api.truthordarebot.xyz/v1"`
	TriviaTimeout       time.Duration `env:"TRIVIA_TIMEOUT" envDefault:"5s"`
}

// LoadConfig parses the module configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend selections.
func (c *Config) Validate() error {
	switch c.PromptStore {
	case PromptStoreSQLite, PromptStoreMemory:
	default:
		return fmt.Errorf("invalid PROMPT_STORE %q: want %s or %s",
			c.PromptStore, PromptStoreSQLite, PromptStoreMemory)
	}

	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want %s or %s",
			c.CacheBackend, CacheBackendMemory, CacheBackendRedis)
	}

	if c.CorrelationTTL <= 0 {
		return errors.New("CORRELATION_TTL must be positive")
	}
	return nil
}
