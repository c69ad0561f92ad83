package domain

import (
	"fmt"
	"strings"
)

const (
	actionSeparator = "_"
	defaultRating   = "default"
)

// Action verbs, the first field of every action token.
const (
	VerbServeAnother = "new"
	VerbAccept       = "accept"
	VerbDeny         = "deny"
	VerbOpenEdit     = "editmodal"
	VerbSubmitEdit   = "edit"
)

// Action is a parsed button or modal custom ID. The concrete type selects the
// transition to run.
type Action interface {
	// CustomID encodes the action back into its wire form.
	CustomID() string
	isAction()
}

// ServeAnother asks for another prompt of the given kind. An empty Rating means the
// original request named none and a default tier should be drawn again.
type ServeAnother struct {
	Kind   Kind
	Rating Rating
}

// SuggestionRef identifies a pending suggestion together with the kind and rating it
// was submitted with, so the moderation flow can proceed without the cache.
type SuggestionRef struct {
	Handle Handle
	Kind   Kind
	Rating Rating
}

// Accept publishes the suggestion unchanged.
type Accept struct{ SuggestionRef }

// Deny discards the suggestion.
type Deny struct{ SuggestionRef }

// OpenEdit shows the edit modal for the suggestion.
type OpenEdit struct{ SuggestionRef }

// SubmitEdit publishes the suggestion with the values entered in the edit modal.
type SubmitEdit struct{ SuggestionRef }

func (ServeAnother) isAction() {}
func (Accept) isAction()       {}
func (Deny) isAction()         {}
func (OpenEdit) isAction()     {}
func (SubmitEdit) isAction()   {}

// CustomID implements Action.
func (a ServeAnother) CustomID() string {
	rating := defaultRating
	if a.Rating != "" {
		rating = string(a.Rating)
	}
	return joinToken(VerbServeAnother, a.Kind.Token(), rating)
}

// CustomID implements Action.
func (a Accept) CustomID() string { return a.encode(VerbAccept) }

// CustomID implements Action.
func (a Deny) CustomID() string { return a.encode(VerbDeny) }

// CustomID implements Action.
func (a OpenEdit) CustomID() string { return a.encode(VerbOpenEdit) }

// CustomID implements Action.
func (a SubmitEdit) CustomID() string { return a.encode(VerbSubmitEdit) }

func (r SuggestionRef) encode(verb string) string {
	return joinToken(verb, r.Kind.Token(), string(r.Handle), string(r.Rating))
}

func joinToken(fields ...string) string {
	return strings.Join(fields, actionSeparator)
}

// ActionVerb returns the verb of a custom ID without validating the rest.
func ActionVerb(customID string) string {
	verb, _, _ := strings.Cut(customID, actionSeparator)
	return verb
}

// ParseAction decodes a custom ID into an Action. Any unknown verb, wrong field
// count, or invalid kind/rating yields an error wrapping ErrMalformedAction.
func ParseAction(customID string) (Action, error) {
	fields := strings.Split(customID, actionSeparator)
	if len(fields) < 3 {
		return nil, malformed(customID, "too few fields")
	}

	kind, ok := ParseKind(fields[1])
	if !ok {
		return nil, malformed(customID, "unknown kind")
	}

	switch fields[0] {
	case VerbServeAnother:
		if len(fields) != 3 {
			return nil, malformed(customID, "expected 3 fields")
		}
		action := ServeAnother{Kind: kind}
		if !strings.EqualFold(fields[2], defaultRating) {
			rating, ok := ParseRating(fields[2])
			if !ok {
				return nil, malformed(customID, "unknown rating")
			}
			action.Rating = rating
		}
		return action, nil

	case VerbAccept, VerbDeny, VerbOpenEdit, VerbSubmitEdit:
		if len(fields) != 4 {
			return nil, malformed(customID, "expected 4 fields")
		}
		handle := Handle(fields[2])
		if !handle.IsValid() {
			return nil, malformed(customID, "empty handle")
		}
		rating, ok := ParseRating(fields[3])
		if !ok {
			return nil, malformed(customID, "unknown rating")
		}
		ref := SuggestionRef{Handle: handle, Kind: kind, Rating: rating}
		switch fields[0] {
		case VerbAccept:
			return Accept{ref}, nil
		case VerbDeny:
			return Deny{ref}, nil
		case VerbOpenEdit:
			return OpenEdit{ref}, nil
		default:
			return SubmitEdit{ref}, nil
		}

	default:
		return nil, malformed(customID, "unknown verb")
	}
}

func malformed(customID, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedAction, customID, reason)
}
