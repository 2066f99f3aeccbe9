package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyQuery   = errors.New("empty city query")
	ErrNotFound     = errors.New("location not found")
	ErrUnauthorized = errors.New("invalid API key")
	ErrNetwork      = errors.New("weather service unavailable")
	ErrMalformed    = errors.New("malformed weather response")

	// ErrNoNearbyCities is an ErrNotFound for an empty /find result.
	ErrNoNearbyCities = fmt.Errorf("%w: no nearby cities", ErrNotFound)

	// Lookup kinds, wrapped around a failure so the message can name what
	// was being fetched.
	ErrLocationLookup = errors.New("forecast by coordinates failed")
	ErrNearbyLookup   = errors.New("nearby cities lookup failed")
)

// Message returns the short text shown to a user for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a city name"
	case errors.Is(err, ErrNoNearbyCities):
		return "No nearby cities found"
	case errors.Is(err, ErrUnauthorized):
		return "Invalid API key. Please check your configuration."
	case errors.Is(err, ErrLocationLookup):
		return "Failed to fetch weather data for your location."
	case errors.Is(err, ErrNearbyLookup):
		return "Failed to fetch nearby cities"
	case errors.Is(err, ErrNotFound):
		return "City not found. Please check the spelling and try again."
	case errors.Is(err, ErrMalformed):
		return "Received an unexpected response from the weather service."
	default:
		return "Failed to fetch weather data. Please try again later."
	}
}

// lookupError tags err with the kind of lookup that failed. An invalid key
// stays as is since it means the same thing for every lookup.
func lookupError(kind, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// statusError maps a non-2xx API status onto the error taxonomy.
func statusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: API returned status %d", ErrNetwork, status)
	}
}
