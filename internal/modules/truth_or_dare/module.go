package truth_or_dare

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/bot"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/presentation"
)

// storeOpenTimeout bounds connecting to the configured backends at startup.
const storeOpenTimeout = 10 * time.Second

func init() {
	bot.Register(&TruthOrDareModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*TruthOrDareModule)(nil)
	_ bot.HealthReporter     = (*TruthOrDareModule)(nil)
)

// TruthOrDareModule serves prompts and runs the suggestion moderation flow.
type TruthOrDareModule struct {
	config   *Config
	stores   *Stores
	handlers *presentation.Handlers
}

// Name returns the module name.
func (m *TruthOrDareModule) Name() string {
	return "truth_or_dare"
}

// Commands returns the slash commands for this module.
func (m *TruthOrDareModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *TruthOrDareModule) CommandHandlers() map[string]bot.InteractionHandler {
	handlers := map[string]bot.InteractionHandler{
		presentation.CommandSuggest: m.handlers.HandleSuggest,
	}
	for _, kind := range domain.Kinds {
		handlers[kind.CommandName()] = m.handlers.HandleServe
	}
	return handlers
}

// ComponentHandlers returns the button handlers for this module.
func (m *TruthOrDareModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		domain.VerbServeAnother: m.handlers.HandleComponent,
		domain.VerbAccept:       m.handlers.HandleComponent,
		domain.VerbDeny:         m.handlers.HandleComponent,
		domain.VerbOpenEdit:     m.handlers.HandleComponent,
	}
}

// ModalHandlers returns the modal submit handlers for this module.
func (m *TruthOrDareModule) ModalHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		domain.VerbSubmitEdit: m.handlers.HandleModal,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *TruthOrDareModule) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init opens the configured stores and wires the handlers.
func (m *TruthOrDareModule) Init(deps bot.ModuleDependencies) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	stores, err := OpenStores(ctx, m.config)
	if err != nil {
		return err
	}

	services, err := NewServices(m.config, stores, deps.Session, deps.Config.AppID, deps.Logger)
	if err != nil {
		_ = stores.Close()
		return err
	}

	m.stores = stores
	m.handlers = presentation.NewHandlers(
		services.Prompts,
		services.Suggestions,
		services.Controls,
		deps.Logger.With("module", m.Name()),
	)

	deps.Logger.Info("truth_or_dare module initialized",
		"prompt_store", m.config.PromptStore,
		"cache_backend", m.config.CacheBackend,
	)
	return nil
}

// HealthChecks returns the store checks for the health endpoint.
func (m *TruthOrDareModule) HealthChecks() map[string]bot.HealthCheck {
	if m.stores == nil {
		return nil
	}
	return m.stores.HealthChecks()
}

// Shutdown closes the stores.
func (m *TruthOrDareModule) Shutdown() error {
	if m.stores == nil {
		return nil
	}
	return m.stores.Close()
}
