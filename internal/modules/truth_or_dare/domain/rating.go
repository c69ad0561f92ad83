package domain

import "strings"

// Rating is the content-maturity tier of a prompt.
type Rating string

const (
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG13"
	RatingR    Rating = "R"
)

// Ratings lists every rating from mildest to strongest.
var Ratings = []Rating{RatingPG, RatingPG13, RatingR}

// DefaultRatings are the tiers drawn from when a request names no rating.
var DefaultRatings = []Rating{RatingPG, RatingPG13}

// ParseRating normalizes a user- or API-supplied rating. Matching is case-insensitive
// and tolerates the "PG-13" spelling.
func ParseRating(s string) (Rating, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PG":
		return RatingPG, true
	case "PG13", "PG-13", "PG_13":
		return RatingPG13, true
	case "R":
		return RatingR, true
	default:
		return "", false
	}
}

// IsValid reports whether r is one of the known ratings.
func (r Rating) IsValid() bool {
	_, ok := ParseRating(string(r))
	return ok
}

// Normalize returns the canonical spelling of r, or r unchanged if it is unknown.
func (r Rating) Normalize() Rating {
	if canonical, ok := ParseRating(string(r)); ok {
		return canonical
	}
	return r
}

// Label returns the display form, e.g. "PG-13".
func (r Rating) Label() string {
	if r == RatingPG13 {
		return "PG-13"
	}
	return string(r)
}

// Lower returns the lowercase form expected by the trivia API and command choices.
func (r Rating) Lower() string {
	return strings.ToLower(string(r))
}

func (r Rating) saturation() float64 {
	switch r {
	case RatingPG:
		return 50
	case RatingPG13:
		return 75
	default:
		return 100
	}
}
