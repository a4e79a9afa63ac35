package domain

import "errors"

// Sentinel errors distinguishing a legitimate empty outcome from a provider
// failure. The HTTP layer maps ErrNoRoute and ErrNotFound to 200 responses
// with the ZERO_RESULTS / NOT_FOUND status vocabulary; ErrProviderUnavailable
// becomes a 500 without leaking upstream detail.
var (
	ErrNoRoute             = errors.New("no viable route")
	ErrNotFound            = errors.New("place not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
)
