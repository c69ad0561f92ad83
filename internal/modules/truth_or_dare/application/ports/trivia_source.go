package ports

import (
	"context"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// SourcePrompt is a prompt fetched from the external trivia catalog.
type SourcePrompt struct {
	// SourceID is the catalog's own identifier, used to skip prompts already pulled.
	SourceID string
	Kind     domain.Kind
	Rating   domain.Rating
	Text     string
}

// TriviaSource defines the interface for pulling prompts from the external catalog.
type TriviaSource interface {
	// FetchRandom returns one random prompt of the given kind. An empty rating lets
	// the catalog choose one.
	FetchRandom(ctx context.Context, kind domain.Kind, rating domain.Rating) (*SourcePrompt, error)
}

// SeenStore records which catalog prompts have already been pulled.
type SeenStore interface {
	// Seen reports whether sourceID was recorded.
	Seen(ctx context.Context, sourceID string) (bool, error)
	// MarkSeen records sourceID and reports whether it was new.
	MarkSeen(ctx context.Context, sourceID string) (bool, error)
}
