package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// RatingPicker chooses a rating when a request names none.
type RatingPicker func() domain.Rating

// RandomDefaultRating picks uniformly among domain.DefaultRatings.
func RandomDefaultRating() domain.Rating {
	return domain.DefaultRatings[rand.IntN(len(domain.DefaultRatings))]
}

// ServeInput contains the input for the Serve use case.
type ServeInput struct {
	Kind   domain.Kind
	Rating domain.Rating // empty to draw a default rating
}

// ServeOutput contains the result of the Serve use case.
type ServeOutput struct {
	Prompt domain.Prompt
	// Rating is the rating actually sampled, after defaulting.
	Rating domain.Rating
}

// PromptService serves random prompts from the pool.
type PromptService struct {
	repo       domain.PromptRepository
	pickRating RatingPicker
}

// NewPromptService creates a new PromptService. A nil picker uses RandomDefaultRating.
func NewPromptService(repo domain.PromptRepository, pickRating RatingPicker) *PromptService {
	if pickRating == nil {
		pickRating = RandomDefaultRating
	}
	return &PromptService{
		repo:       repo,
		pickRating: pickRating,
	}
}

// Serve returns a random prompt of the requested kind and rating.
// Returns domain.ErrNoPrompt when the pool holds nothing that matches.
func (s *PromptService) Serve(ctx context.Context, input ServeInput) (*ServeOutput, error) {
	rating := input.Rating
	if rating == "" {
		rating = s.pickRating()
	}

	prompt, err := s.repo.Sample(ctx, input.Kind, rating)
	if err != nil {
		if errors.Is(err, domain.ErrNoPrompt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return &ServeOutput{
		Prompt: prompt,
		Rating: rating,
	}, nil
}
