package domain

import "strings"

// Kind is the category of a prompt.
type Kind string

const (
	KindTruth          Kind = "TRUTH"
	KindDare           Kind = "DARE"
	KindWouldYouRather Kind = "WOULD_YOU_RATHER"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindTruth, KindDare, KindWouldYouRather}

// ParseKind converts a command name, action token, or trivia API type into a Kind.
// Matching is case-insensitive. Returns false for unknown values.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truth":
		return KindTruth, true
	case "dare":
		return KindDare, true
	case "wyr", "would-you-rather", "would_you_rather", "wouldyourather":
		return KindWouldYouRather, true
	default:
		return "", false
	}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	_, ok := ParseKind(string(k))
	return ok
}

// Normalize returns the canonical spelling of k, or k unchanged if it is unknown.
func (k Kind) Normalize() Kind {
	if canonical, ok := ParseKind(string(k)); ok {
		return canonical
	}
	return k
}

// Token returns the underscore-free form used inside action tokens.
func (k Kind) Token() string {
	if k == KindWouldYouRather {
		return "WYR"
	}
	return string(k)
}

// CommandName returns the slash command that serves this kind.
func (k Kind) CommandName() string {
	switch k {
	case KindTruth:
		return "truth"
	case KindDare:
		return "dare"
	default:
		return "would-you-rather"
	}
}

// Label returns a human-readable name.
func (k Kind) Label() string {
	switch k {
	case KindTruth:
		return "Truth"
	case KindDare:
		return "Dare"
	default:
		return "Would You Rather"
	}
}

// SourcePath returns the path segment used by the trivia API for this kind.
func (k Kind) SourcePath() string {
	switch k {
	case KindTruth:
		return "truth"
	case KindDare:
		return "dare"
	default:
		return "wyr"
	}
}

func (k Kind) hue() float64 {
	switch k {
	case KindTruth:
		return 120 // green
	case KindDare:
		return 0 // red
	default:
		return 210 // blue
	}
}
