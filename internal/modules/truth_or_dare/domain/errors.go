package domain

import (
	"errors"
	"fmt"
)

// Domain errors for the truth or dare module.
var (
	// ErrNoPrompt is returned when no prompt matches a kind and rating.
	ErrNoPrompt = errors.New("no prompt for that kind and rating")

	// ErrSuggestionNotFound is returned when a handle is not in the suggestion cache.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrSuggestionResolved is returned for a handle whose suggestion was already
	// accepted, edited, or denied. It matches ErrSuggestionNotFound.
	ErrSuggestionResolved = fmt.Errorf("%w: already moderated", ErrSuggestionNotFound)

	// ErrMalformedAction is returned when an action token cannot be parsed.
	ErrMalformedAction = errors.New("malformed action token")

	// ErrInvalidKind is returned for an unknown prompt kind.
	ErrInvalidKind = errors.New("invalid prompt kind")

	// ErrInvalidRating is returned for an unknown rating tier.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrEmptyText is returned when a prompt or suggestion has no text.
	ErrEmptyText = errors.New("prompt text is empty")
)
