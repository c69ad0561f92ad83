package truth_or_dare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/bot"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/usecases"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/infrastructure"
)

// Stores bundles the storage backends selected by the configuration.
type Stores struct {
	Guard        *infrastructure.Guard
	Prompts      domain.PromptRepository
	Seen         ports.SeenStore
	Suggestions  domain.SuggestionCache
	Correlations domain.CorrelationCache

	checks  map[string]bot.HealthCheck
	closers []func() error
}

// OpenStores opens the prompt store and caches named by cfg.
func OpenStores(ctx context.Context, cfg *Config) (*Stores, error) {
	s := &Stores{
		Guard:  infrastructure.NewGuard(),
		checks: make(map[string]bot.HealthCheck),
	}

	switch cfg.PromptStore {
	case PromptStoreMemory:
		prompts := infrastructure.NewMemoryPromptRepository(s.Guard)
		s.Prompts = prompts
		s.Seen = infrastructure.NewMemorySeenStore()
		s.checks["prompt_store"] = prompts.Ping
	default:
		sqlite, err := infrastructure.OpenSQLiteStore(ctx, cfg.DatabasePath, s.Guard)
		if err != nil {
			return nil, err
		}
		s.Prompts = sqlite
		s.Seen = sqlite
		s.checks["prompt_store"] = sqlite.Ping
		s.closers = append(s.closers, sqlite.Close)
	}

	switch cfg.CacheBackend {
	case CacheBackendRedis:
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		suggestions := infrastructure.NewRedisSuggestionCache(rdb, s.Guard, cfg.SuggestionTTL)
		s.Suggestions = suggestions
		s.Correlations = infrastructure.NewRedisCorrelationCache(rdb)
		s.checks["cache"] = suggestions.Ping
		s.closers = append(s.closers, rdb.Close)
	default:
		s.Suggestions = infrastructure.NewMemorySuggestionCache(s.Guard, cfg.SuggestionTTL)
		s.Correlations = infrastructure.NewMemoryCorrelationCache()
	}

	return s, nil
}

// HealthChecks returns a check per remote or file-backed store.
func (s *Stores) HealthChecks() map[string]bot.HealthCheck {
	return s.checks
}

// Close releases every opened backend.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Services holds the use cases of the module, wired to their backends.
type Services struct {
	Prompts     *usecases.PromptService
	Suggestions *usecases.SuggestionService
	Controls    *usecases.ControlsService
	Population  *usecases.PopulationService
	Snapshot    *usecases.SnapshotService
}

// NewServices wires the use cases to stores and to Discord through session.
func NewServices(
	cfg *Config,
	stores *Stores,
	session *discordgo.Session,
	appID string,
	logger *slog.Logger,
) (*Services, error) {
	if session == nil {
		return nil, fmt.Errorf("truth_or_dare requires a Discord session")
	}

	gateway := infrastructure.NewDiscordGateway(session, appID, cfg.SuggestionChannelID)
	trivia := infrastructure.NewTriviaClient(cfg.TriviaAPIURL, cfg.TriviaTimeout)

	suggestions := usecases.NewSuggestionService(
		stores.Suggestions,
		stores.Prompts,
		gateway,
		stores.Guard,
		logger,
	)

	return &Services{
		Prompts:     usecases.NewPromptService(stores.Prompts, nil),
		Suggestions: suggestions,
		Controls:    usecases.NewControlsService(stores.Correlations, gateway, cfg.CorrelationTTL, logger),
		Population:  usecases.NewPopulationService(trivia, stores.Seen, suggestions, stores.Prompts, logger),
		Snapshot:    usecases.NewSnapshotService(stores.Prompts, logger),
	}, nil
}
