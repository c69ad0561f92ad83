package bot

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Bot manages module coordination and routes webhook interactions to handlers.
type Bot struct {
	config  *Config
	session *discordgo.Session
	logger  *slog.Logger
	modules []Module

	commandHandlers   map[string]InteractionHandler
	componentHandlers map[string]InteractionHandler
	modalHandlers     map[string]InteractionHandler
	healthChecks      map[string]HealthCheck

	followups sync.WaitGroup
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		config:            cfg,
		logger:            logger,
		modules:           make([]Module, 0),
		commandHandlers:   make(map[string]InteractionHandler),
		componentHandlers: make(map[string]InteractionHandler),
		modalHandlers:     make(map[string]InteractionHandler),
		healthChecks:      make(map[string]HealthCheck),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start creates the REST session, initializes modules, and optionally registers
// commands. No gateway connection is opened; interactions arrive over HTTP.
func (b *Bot) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	if err := b.loadModuleConfigs(); err != nil {
		return err
	}

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	b.buildHandlerMap()

	if b.config.RegisterCommands {
		if err := b.RegisterCommands(ctx); err != nil {
			return fmt.Errorf("failed to register commands: %w", err)
		}
	}

	b.logger.Info("started bot", "app_id", b.config.AppID)

	return nil
}

// Stop waits for in-flight follow-up tasks, then shuts down modules.
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.followups.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("abandoned pending follow-up tasks", "error", ctx.Err())
	}

	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			b.logger.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	return nil
}

// loadModuleConfigs calls LoadConfig on every ConfigurableModule.
func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		cm, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := cm.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session: b.session,
		Config:  b.config,
		Logger:  b.logger,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		b.logger.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	b.logger.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the routing tables from all loaded modules.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.commandHandlers, mod.CommandHandlers())
		maps.Copy(b.componentHandlers, mod.ComponentHandlers())
		maps.Copy(b.modalHandlers, mod.ModalHandlers())

		if hr, ok := mod.(HealthReporter); ok {
			for name, check := range hr.HealthChecks() {
				b.healthChecks[mod.Name()+"."+name] = check
			}
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// RegisterCommands replaces the application's global commands with those of the
// loaded modules.
func (b *Bot) RegisterCommands(ctx context.Context) error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.config.AppID,
		"", // Empty string registers commands globally
		commands,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return err
	}

	for _, cmd := range registered {
		b.logger.Debug("registered command", "command", cmd.Name, "id", cmd.ID)
	}
	b.logger.Info("registered commands", "count", len(registered))

	return nil
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// Dispatch routes an interaction to the matching handler. Handler errors are logged
// and answered with a generic error embed, so Dispatch only fails when no response
// could be produced at all.
func (b *Bot) Dispatch(ctx context.Context, i *discordgo.Interaction, r Responder) error {
	logger := b.logger.With("interaction_id", i.ID, "type", i.Type.String())

	var (
		route   string
		handler InteractionHandler
		ok      bool
	)

	switch i.Type {
	case discordgo.InteractionPing:
		return r.Respond(&discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommand:
		route = i.ApplicationCommandData().Name
		handler, ok = b.commandHandlers[route]
		if !ok {
			logger.Warn("found no handler for command", "command", route)
			return respondWithEmbed(r, "Unknown Command", "This command is not recognized.", colorYellow)
		}

	case discordgo.InteractionMessageComponent:
		route = routeKey(i.MessageComponentData().CustomID)
		handler, ok = b.componentHandlers[route]

	case discordgo.InteractionModalSubmit:
		route = routeKey(i.ModalSubmitData().CustomID)
		handler, ok = b.modalHandlers[route]

	default:
		logger.Warn("received unsupported interaction type")
		return respondWithEmbed(r, "Unsupported Interaction", "This interaction is not supported.",
			colorYellow)
	}

	if !ok {
		logger.Warn("found no handler for action", "route", route)
		return respondWithEmbed(r, "Error", "This action is not recognized.", colorRed)
	}

	if err := handler(ctx, i, r); err != nil {
		logger.Error("failed to handle interaction", "route", route, "error", err)
		if err := respondWithEmbed(r, "Error", "An error occurred while processing your request.",
			colorRed); err != nil {
			logger.Debug("skipped error response", "error", err)
		}
	}

	return nil
}

// RunAfterResponse runs follow-up tasks on a tracked goroutine with the configured
// timeout. Panics are recovered and logged.
func (b *Bot) RunAfterResponse(tasks []func(ctx context.Context)) {
	if len(tasks) == 0 {
		return
	}

	b.followups.Add(1)
	go func() {
		defer b.followups.Done()

		ctx, cancel := context.WithTimeout(context.Background(), b.config.FollowupTimeout)
		defer cancel()

		for _, task := range tasks {
			b.runTask(ctx, task)
		}
	}()
}

func (b *Bot) runTask(ctx context.Context, task func(ctx context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("follow-up task panicked", "panic", p)
		}
	}()
	task(ctx)
}

// HealthChecks returns the named checks registered by modules.
func (b *Bot) HealthChecks() map[string]HealthCheck {
	return b.healthChecks
}

// routeKey extracts the handler key from a component or modal custom ID.
func routeKey(customID string) string {
	key, _, _ := strings.Cut(customID, "_")
	return key
}

// respondWithEmbed sends an embed response to an interaction.
func respondWithEmbed(r Responder, title, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}
