package usecases

import "errors"

// Application errors for the truth or dare module.
var (
	// ErrUpstreamUnavailable is returned when Discord or the trivia catalog cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrStoreUnavailable is returned when a store read or write fails.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidArguments is returned when user-supplied values fail validation.
	ErrInvalidArguments = errors.New("invalid arguments")
)
