package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"golang.org/x/sync/errgroup"
)

// PopulateInput contains the input for the Populate use case.
type PopulateInput struct {
	Kinds []domain.Kind
	// Rating restricts fetched prompts. Empty lets the catalog choose.
	Rating  domain.Rating
	PerKind int
	// Direct appends prompts to the pool instead of posting them for review.
	Direct      bool
	Concurrency int
	// Delay is waited before each catalog request.
	Delay       time.Duration
	SubmitterID snowflake.ID
}

// PopulateOutput summarizes a population run.
type PopulateOutput struct {
	Fetched int
	Skipped int
	Added   int
	Failed  int
}

// PopulationService pulls prompts from the external catalog into the pipeline.
type PopulationService struct {
	source      ports.TriviaSource
	seen        ports.SeenStore
	suggestions *SuggestionService
	prompts     domain.PromptRepository
	logger      *slog.Logger
}

// NewPopulationService creates a new PopulationService.
func NewPopulationService(
	source ports.TriviaSource,
	seen ports.SeenStore,
	suggestions *SuggestionService,
	prompts domain.PromptRepository,
	logger *slog.Logger,
) *PopulationService {
	return &PopulationService{
		source:      source,
		seen:        seen,
		suggestions: suggestions,
		prompts:     prompts,
		logger:      logger,
	}
}

// Populate fetches PerKind prompts for each kind. Catalog prompts already pulled in
// an earlier run are skipped. Individual failures are counted and logged. The run
// stops early only when parent is cancelled.
func (s *PopulationService) Populate(parent context.Context, input PopulateInput) (*PopulateOutput, error) {
	if input.PerKind <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidArguments)
	}
	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = domain.Kinds
	}
	concurrency := max(input.Concurrency, 1)

	var fetched, skipped, added, failed atomic.Int64
	claims := newClaimSet()

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(concurrency)

	for _, kind := range kinds {
		for range input.PerKind {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := sleepCtx(ctx, input.Delay); err != nil {
					return err
				}

				outcome, err := s.pullOne(ctx, kind, input, claims)
				switch {
				case ctx.Err() != nil:
					return ctx.Err()
				case err != nil:
					failed.Add(1)
					s.logger.Warn("failed to pull prompt", "kind", kind, "error", err)
					return nil
				}

				fetched.Add(1)
				if outcome == pullSkipped {
					skipped.Add(1)
				} else {
					added.Add(1)
				}
				return nil
			})
		}
	}

	err := g.Wait()
	if err == nil {
		err = parent.Err()
	}

	output := &PopulateOutput{
		Fetched: int(fetched.Load()),
		Skipped: int(skipped.Load()),
		Added:   int(added.Load()),
		Failed:  int(failed.Load()),
	}
	s.logger.Info("finished population run",
		"fetched", output.Fetched,
		"skipped", output.Skipped,
		"added", output.Added,
		"failed", output.Failed,
		"direct", input.Direct,
	)

	return output, err
}

type pullOutcome int

const (
	pullAdded pullOutcome = iota
	pullSkipped
)

// pullOne fetches one catalog prompt and hands it on. The source ID is recorded
// only once the prompt was appended or posted, so a failed attempt can be retried
// by a later run.
func (s *PopulationService) pullOne(
	ctx context.Context,
	kind domain.Kind,
	input PopulateInput,
	claims *claimSet,
) (pullOutcome, error) {
	item, err := s.source.FetchRandom(ctx, kind, input.Rating)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	if !claims.claim(item.SourceID) {
		s.logger.Debug("skipped duplicate catalog prompt", "source_id", item.SourceID, "kind", kind)
		return pullSkipped, nil
	}
	seen, err := s.seen.Seen(ctx, item.SourceID)
	if err != nil {
		claims.release(item.SourceID)
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if seen {
		s.logger.Debug("skipped duplicate catalog prompt", "source_id", item.SourceID, "kind", kind)
		return pullSkipped, nil
	}

	if err := s.handOn(ctx, item, input); err != nil {
		claims.release(item.SourceID)
		return 0, err
	}

	if _, err := s.seen.MarkSeen(ctx, item.SourceID); err != nil {
		s.logger.Warn("failed to record catalog prompt",
			"source_id", item.SourceID,
			"error", err,
		)
	}
	return pullAdded, nil
}

// handOn appends item to the pool in direct mode and posts it for review otherwise.
func (s *PopulationService) handOn(ctx context.Context, item *ports.SourcePrompt, input PopulateInput) error {
	if input.Direct {
		prompt := domain.NewPrompt(item.Kind, item.Rating, item.Text, domain.PromptSourcePopulation)
		if err := prompt.Validate(); err != nil {
			return err
		}
		if err := s.prompts.Append(ctx, prompt); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return nil
	}

	args, err := domain.NewSuggestArgs(string(item.Kind), item.Text, string(item.Rating))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	_, err = s.suggestions.Submit(ctx, SubmitInput{Args: args, SubmitterID: input.SubmitterID})
	return err
}

// claimSet keeps concurrent pulls of one run from handing on the same source ID.
type claimSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newClaimSet() *claimSet {
	return &claimSet{ids: make(map[string]struct{})}
}

func (c *claimSet) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

func (c *claimSet) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.ids, id)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
