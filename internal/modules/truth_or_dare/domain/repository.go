package domain

import (
	"context"
	"time"
)

// PromptRepository holds the pool of approved prompts. The pool only grows.
type PromptRepository interface {
	// Append adds one prompt. Appends never overlap on the same repository.
	Append(ctx context.Context, prompt Prompt) error

	// Sample returns a uniformly random prompt of the given kind and rating,
	// or ErrNoPrompt if none match.
	Sample(ctx context.Context, kind Kind, rating Rating) (Prompt, error)

	// Count returns how many prompts match the given kind and rating.
	Count(ctx context.Context, kind Kind, rating Rating) (int, error)

	// All returns every prompt in insertion order.
	All(ctx context.Context) ([]Prompt, error)
}

// SuggestionCache holds suggestions awaiting moderation.
type SuggestionCache interface {
	// Put registers a suggestion, overwriting any entry with the same handle.
	Put(ctx context.Context, suggestion PendingSuggestion) error

	// Take returns the suggestion without removing it. It returns
	// ErrSuggestionResolved for a removed handle and ErrSuggestionNotFound for an
	// unknown or expired one.
	Take(ctx context.Context, handle Handle) (PendingSuggestion, error)

	// Remove deletes the suggestion and marks the handle as resolved until the
	// cache TTL elapses. Removing a missing handle still marks it.
	Remove(ctx context.Context, handle Handle) error
}

// CorrelationCache maps an interaction ID to the token needed to edit its response.
type CorrelationCache interface {
	// Remember stores a single-use association that expires after ttl.
	Remember(ctx context.Context, interactionID, token string, ttl time.Duration) error

	// Recall returns and invalidates the token. ok is false if the entry is absent
	// or expired.
	Recall(ctx context.Context, interactionID string) (token string, ok bool, err error)
}
