package ports

import (
	"context"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// ModerationChannel defines the interface for posting suggestions for review.
type ModerationChannel interface {
	// PostSuggestion posts a review card carrying Accept, Edit, and Deny controls.
	PostSuggestion(ctx context.Context, suggestion domain.PendingSuggestion) error
}
