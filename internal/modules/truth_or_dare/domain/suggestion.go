package domain

import (
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Handle is the short opaque token linking a moderation card back to its suggestion.
type Handle string

const handleLength = 8

// NewHandle returns a random handle. Handles are hex, so they never contain the
// underscore used to separate action token fields.
func NewHandle() Handle {
	id := uuid.New()
	return Handle(strings.ReplaceAll(id.String(), "-", "")[:handleLength])
}

// IsValid reports whether h can travel inside an action token.
func (h Handle) IsValid() bool {
	return h != "" && !strings.Contains(string(h), actionSeparator)
}

// SuggestionState is a stage of the suggestion lifecycle.
type SuggestionState int

const (
	SuggestionSubmitted     SuggestionState = iota // Awaiting moderation
	SuggestionEditRequested                        // Edit modal shown, nothing stored yet
	SuggestionAccepted                             // Published as submitted
	SuggestionEdited                               // Published with moderator changes
	SuggestionDenied                               // Discarded
)

// String returns a human-readable representation of the state.
func (s SuggestionState) String() string {
	switch s {
	case SuggestionEditRequested:
		return "edit_requested"
	case SuggestionAccepted:
		return "accepted"
	case SuggestionEdited:
		return "edited"
	case SuggestionDenied:
		return "denied"
	default:
		return "submitted"
	}
}

// IsTerminal reports whether the suggestion has left the cache for good.
func (s SuggestionState) IsTerminal() bool {
	return s == SuggestionAccepted || s == SuggestionEdited || s == SuggestionDenied
}

// PublishesPrompt reports whether reaching s appends a prompt.
func (s SuggestionState) PublishesPrompt() bool {
	return s == SuggestionAccepted || s == SuggestionEdited
}

// PendingSuggestion is a user-proposed prompt awaiting moderation.
type PendingSuggestion struct {
	Handle      Handle       `json:"handle"`
	Kind        Kind         `json:"kind"`
	Text        string       `json:"text"`
	Rating      Rating       `json:"rating"`
	SubmitterID snowflake.ID `json:"submitter_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Edit replaces the text and rating with moderator-supplied values.
func (s PendingSuggestion) Edit(text string, rating Rating) PendingSuggestion {
	s.Text = strings.TrimSpace(text)
	s.Rating = rating
	return s
}

// ToPrompt builds the prompt this suggestion publishes.
func (s PendingSuggestion) ToPrompt(source PromptSource) Prompt {
	return NewPrompt(s.Kind, s.Rating, s.Text, source)
}
