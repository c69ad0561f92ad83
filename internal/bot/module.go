package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler handles a Discord interaction and writes its response through r.
type InteractionHandler func(ctx context.Context, i *discordgo.Interaction, r Responder) error

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	// Session is a REST-only Discord session authenticated with the bot token.
	Session *discordgo.Session
	Config  *Config
	Logger  *slog.Logger
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the slash commands that this module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers returns a map of command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// ComponentHandlers returns message component handlers keyed by the custom ID
	// prefix before the first underscore.
	ComponentHandlers() map[string]InteractionHandler

	// ModalHandlers returns modal submit handlers keyed the same way as
	// ComponentHandlers.
	ModalHandlers() map[string]InteractionHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}

// HealthReporter is an optional interface for modules with external dependencies.
type HealthReporter interface {
	// HealthChecks returns named checks run by the health endpoint.
	HealthChecks() map[string]HealthCheck
}
