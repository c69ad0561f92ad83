package bot

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken     string        `env:"DISCORD_TOKEN,notEmpty"`
	AppID            string        `env:"DISCORD_APP_ID,notEmpty"`
	PublicKey        string        `env:"DISCORD_PUBLIC_KEY,notEmpty"`
	Port             string        `env:"PORT" envDefault:"3000"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
	FollowupTimeout  time.Duration `env:"FOLLOWUP_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RegisterCommands bool          `env:"REGISTER_COMMANDS" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing or the public key is malformed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.VerifyKey(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// VerifyKey decodes the hex-encoded Ed25519 public key used to verify requests.
func (c *Config) VerifyKey() (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(c.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: want %d bytes, got %d",
			ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
}

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL and installs it
// as the slog default.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
