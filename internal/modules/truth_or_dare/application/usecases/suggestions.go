package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

const maxHandleAttempts = 5

// SubmitInput contains the input for the Submit use case.
type SubmitInput struct {
	Args        domain.SuggestArgs
	SubmitterID snowflake.ID
}

// SubmitOutput contains the result of the Submit use case.
type SubmitOutput struct {
	Suggestion domain.PendingSuggestion
}

// ModerateInput identifies the suggestion a moderator acted on.
type ModerateInput struct {
	Ref domain.SuggestionRef
	// FallbackText is the suggestion text shown on the review card. It is used when
	// the cache no longer holds the handle.
	FallbackText string
}

// ModerateOutput contains the result of a moderation transition.
type ModerateOutput struct {
	Suggestion domain.PendingSuggestion
	State      domain.SuggestionState
	// Prompt is set when the transition published a prompt.
	Prompt *domain.Prompt
	// Recovered is true when the suggestion was rebuilt from the review card.
	Recovered bool
}

// SubmitEditInput contains the input for the SubmitEdit use case.
type SubmitEditInput struct {
	Ref       domain.SuggestionRef
	Text      string
	RawRating string
}

// SuggestionService drives the suggestion lifecycle from submission to publication.
type SuggestionService struct {
	cache      domain.SuggestionCache
	prompts    domain.PromptRepository
	moderation ports.ModerationChannel
	guard      ports.ExclusiveAccess
	logger     *slog.Logger
	newHandle  func() domain.Handle
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(
	cache domain.SuggestionCache,
	prompts domain.PromptRepository,
	moderation ports.ModerationChannel,
	guard ports.ExclusiveAccess,
	logger *slog.Logger,
) *SuggestionService {
	return &SuggestionService{
		cache:      cache,
		prompts:    prompts,
		moderation: moderation,
		guard:      guard,
		logger:     logger,
		newHandle:  domain.NewHandle,
	}
}

// Submit caches a new suggestion and posts it for review. If the review card cannot
// be posted the suggestion is dropped again.
func (s *SuggestionService) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	handle, err := s.freeHandle(ctx)
	if err != nil {
		return nil, err
	}

	suggestion := domain.PendingSuggestion{
		Handle:      handle,
		Kind:        input.Args.Kind,
		Text:        input.Args.Text,
		Rating:      input.Args.Rating,
		SubmitterID: input.SubmitterID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.cache.Put(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := s.moderation.PostSuggestion(ctx, suggestion); err != nil {
		if rmErr := s.cache.Remove(ctx, handle); rmErr != nil {
			s.logger.Warn("failed to drop unposted suggestion", "handle", handle, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	s.logger.Info("submitted suggestion",
		"handle", handle,
		"kind", suggestion.Kind,
		"rating", suggestion.Rating,
		"submitter_id", input.SubmitterID,
	)

	return &SubmitOutput{Suggestion: suggestion}, nil
}

// freeHandle mints a handle the cache holds neither as pending nor as resolved.
func (s *SuggestionService) freeHandle(ctx context.Context) (domain.Handle, error) {
	for range maxHandleAttempts {
		handle := s.newHandle()
		_, err := s.cache.Take(ctx, handle)
		if unknownHandle(err) {
			return handle, nil
		}
		if err != nil && !errors.Is(err, domain.ErrSuggestionResolved) {
			return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	return "", fmt.Errorf("%w: no free suggestion handle after %d attempts",
		ErrStoreUnavailable, maxHandleAttempts)
}

// Accept publishes the suggestion as submitted. The prompt is appended before the
// suggestion leaves the cache.
func (s *SuggestionService) Accept(ctx context.Context, input ModerateInput) (*ModerateOutput, error) {
	var output *ModerateOutput

	err := s.exclusive(ctx, input.Ref.Handle, func(ctx context.Context) error {
		suggestion, recovered, err := s.resolve(ctx, input)
		if err != nil {
			return err
		}

		prompt := suggestion.ToPrompt(domain.PromptSourceSuggestion)
		if err := s.prompts.Append(ctx, prompt); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.forget(ctx, input.Ref.Handle)

		output = &ModerateOutput{
			Suggestion: suggestion,
			State:      domain.SuggestionAccepted,
			Prompt:     &prompt,
			Recovered:  recovered,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("accepted suggestion",
		"handle", input.Ref.Handle,
		"prompt_id", output.Prompt.ID,
		"recovered", output.Recovered,
	)
	return output, nil
}

// Deny discards the suggestion. Denying a suggestion the cache no longer holds
// succeeds with whatever the review card still shows, unless it was already
// resolved.
func (s *SuggestionService) Deny(ctx context.Context, input ModerateInput) (*ModerateOutput, error) {
	var output *ModerateOutput

	err := s.exclusive(ctx, input.Ref.Handle, func(ctx context.Context) error {
		suggestion, recovered, err := s.resolve(ctx, input)
		if unknownHandle(err) {
			suggestion = refSuggestion(input.Ref, "")
			recovered = true
		} else if err != nil {
			return err
		}

		s.forget(ctx, input.Ref.Handle)

		output = &ModerateOutput{
			Suggestion: suggestion,
			State:      domain.SuggestionDenied,
			Recovered:  recovered,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("denied suggestion", "handle", input.Ref.Handle)
	return output, nil
}

// OpenEdit returns the suggestion to pre-fill the edit modal. The cache is left
// untouched, so abandoning the modal keeps the suggestion pending.
func (s *SuggestionService) OpenEdit(ctx context.Context, input ModerateInput) (*ModerateOutput, error) {
	suggestion, recovered, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	return &ModerateOutput{
		Suggestion: suggestion,
		State:      domain.SuggestionEditRequested,
		Recovered:  recovered,
	}, nil
}

// SubmitEdit publishes the suggestion with the moderator's text and rating.
func (s *SuggestionService) SubmitEdit(ctx context.Context, input SubmitEditInput) (*ModerateOutput, error) {
	rating, ok := domain.ParseRating(input.RawRating)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidArguments, domain.ErrInvalidRating, input.RawRating)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, domain.ErrEmptyText)
	}

	var output *ModerateOutput

	err := s.exclusive(ctx, input.Ref.Handle, func(ctx context.Context) error {
		suggestion, err := s.cache.Take(ctx, input.Ref.Handle)
		recovered := false
		switch {
		case unknownHandle(err):
			suggestion = refSuggestion(input.Ref, "")
			recovered = true
		case errors.Is(err, domain.ErrSuggestionResolved):
			return err
		case err != nil:
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		edited := suggestion.Edit(text, rating)
		prompt := edited.ToPrompt(domain.PromptSourceEdited)
		if err := s.prompts.Append(ctx, prompt); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.forget(ctx, input.Ref.Handle)

		output = &ModerateOutput{
			Suggestion: edited,
			State:      domain.SuggestionEdited,
			Prompt:     &prompt,
			Recovered:  recovered,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("accepted edited suggestion",
		"handle", input.Ref.Handle,
		"prompt_id", output.Prompt.ID,
		"rating", rating,
	)
	return output, nil
}

// resolve looks the suggestion up in the cache, falling back to the review card
// text. Returns domain.ErrSuggestionResolved for a handle that was already
// moderated and domain.ErrSuggestionNotFound when neither source has it.
func (s *SuggestionService) resolve(
	ctx context.Context,
	input ModerateInput,
) (domain.PendingSuggestion, bool, error) {
	suggestion, err := s.cache.Take(ctx, input.Ref.Handle)
	if err == nil {
		return suggestion, false, nil
	}
	if errors.Is(err, domain.ErrSuggestionResolved) {
		return domain.PendingSuggestion{}, false, err
	}
	if !errors.Is(err, domain.ErrSuggestionNotFound) {
		return domain.PendingSuggestion{}, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	text := strings.TrimSpace(input.FallbackText)
	if text == "" {
		return domain.PendingSuggestion{}, false, err
	}
	s.logger.Warn("recovered suggestion from review card", "handle", input.Ref.Handle)
	return refSuggestion(input.Ref, text), true, nil
}

// forget removes a handle after its terminal transition. The prompt has already
// been stored, so a failure only leaves a stale cache entry behind.
func (s *SuggestionService) forget(ctx context.Context, handle domain.Handle) {
	if err := s.cache.Remove(ctx, handle); err != nil {
		s.logger.Warn("failed to remove suggestion", "handle", handle, "error", err)
	}
}

// unknownHandle reports whether err means the cache never held the handle or let
// it expire.
func unknownHandle(err error) bool {
	return errors.Is(err, domain.ErrSuggestionNotFound) && !errors.Is(err, domain.ErrSuggestionResolved)
}

func (s *SuggestionService) exclusive(
	ctx context.Context,
	handle domain.Handle,
	op func(ctx context.Context) error,
) error {
	return s.guard.WithExclusiveAccess(ctx, "suggestion:"+string(handle), op)
}

func refSuggestion(ref domain.SuggestionRef, text string) domain.PendingSuggestion {
	return domain.PendingSuggestion{
		Handle: ref.Handle,
		Kind:   ref.Kind,
		Rating: ref.Rating,
		Text:   text,
	}
}
