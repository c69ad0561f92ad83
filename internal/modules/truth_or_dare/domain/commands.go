package domain

import (
	"fmt"
	"strings"
)

// ServeArgs are the validated options of a truth, dare, or would-you-rather command.
type ServeArgs struct {
	Kind   Kind
	Rating Rating // empty when the user named none
}

// SuggestArgs are the validated options of the suggest command.
type SuggestArgs struct {
	Kind   Kind
	Text   string
	Rating Rating
}

// MaxSuggestionLength bounds suggestion text so it fits an embed title and a modal field.
const MaxSuggestionLength = 256

// NewServeArgs validates the raw options of a serve command.
func NewServeArgs(commandName, rawRating string) (ServeArgs, error) {
	kind, ok := ParseKind(commandName)
	if !ok {
		return ServeArgs{}, fmt.Errorf("%w: %q", ErrInvalidKind, commandName)
	}
	args := ServeArgs{Kind: kind}
	if rawRating != "" {
		rating, ok := ParseRating(rawRating)
		if !ok {
			return ServeArgs{}, fmt.Errorf("%w: %q", ErrInvalidRating, rawRating)
		}
		args.Rating = rating
	}
	return args, nil
}

// NewSuggestArgs validates the raw options of the suggest command. All three
// fields are required.
func NewSuggestArgs(rawKind, text, rawRating string) (SuggestArgs, error) {
	kind, ok := ParseKind(rawKind)
	if !ok {
		return SuggestArgs{}, fmt.Errorf("%w: %q", ErrInvalidKind, rawKind)
	}
	rating, ok := ParseRating(rawRating)
	if !ok {
		return SuggestArgs{}, fmt.Errorf("%w: %q", ErrInvalidRating, rawRating)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SuggestArgs{}, ErrEmptyText
	}
	if len([]rune(text)) > MaxSuggestionLength {
		return SuggestArgs{}, fmt.Errorf("suggestion longer than %d characters", MaxSuggestionLength)
	}
	return SuggestArgs{Kind: kind, Text: text, Rating: rating}, nil
}
