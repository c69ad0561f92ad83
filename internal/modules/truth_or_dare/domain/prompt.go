package domain

import (
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PromptID uniquely identifies a prompt. It is a snowflake whose timestamp bits hold
// the creation time and whose low 22 bits come from a per-process sequence with a
// random starting point.
type PromptID = snowflake.ID

// PromptSource records how a prompt entered the pool.
type PromptSource string

const (
	PromptSourceSuggestion PromptSource = "suggestion"
	PromptSourceEdited     PromptSource = "edited"
	PromptSourcePopulation PromptSource = "population"
	PromptSourceImport     PromptSource = "import"
)

// Prompt is an approved, servable truth, dare, or would-you-rather item.
// Prompts are immutable once appended to a repository.
type Prompt struct {
	ID        PromptID     `json:"id"`
	Kind      Kind         `json:"kind"`
	Rating    Rating       `json:"rating"`
	Text      string       `json:"text"`
	Source    PromptSource `json:"source,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

const sequenceMask = 1<<22 - 1

var idSequence atomic.Uint64

func init() {
	idSequence.Store(rand.Uint64N(sequenceMask + 1))
}

// NewPromptID returns an ID made from now and the next sequence value.
func NewPromptID(now time.Time) PromptID {
	ts := snowflake.New(now)
	return PromptID(uint64(ts) | idSequence.Add(1)&sequenceMask)
}

// NewPrompt builds a prompt with a fresh ID. Kind and rating must already be valid;
// the text is trimmed.
func NewPrompt(kind Kind, rating Rating, text string, source PromptSource) Prompt {
	now := time.Now().UTC()
	return Prompt{
		ID:        NewPromptID(now),
		Kind:      kind,
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		Source:    source,
		CreatedAt: now,
	}
}

// Normalize rewrites kind and rating to their canonical spellings and trims the text.
// Stores compare kind and rating exactly, so prompts are normalized before storing.
func (p Prompt) Normalize() Prompt {
	p.Kind = p.Kind.Normalize()
	p.Rating = p.Rating.Normalize()
	p.Text = strings.TrimSpace(p.Text)
	return p
}

// Validate checks that the prompt can be stored.
func (p Prompt) Validate() error {
	if !p.Kind.IsValid() {
		return ErrInvalidKind
	}
	if !p.Rating.IsValid() {
		return ErrInvalidRating
	}
	if strings.TrimSpace(p.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// Matches reports whether the prompt belongs to the given kind and rating.
func (p Prompt) Matches(kind Kind, rating Rating) bool {
	return p.Kind == kind && p.Rating == rating
}
