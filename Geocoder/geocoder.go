package Geocoder

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound means the provider has no match for the name.
	ErrNotFound = errors.New("geocoder: location not found")
	// ErrLookupFailed covers transport errors and unexpected provider responses.
	ErrLookupFailed = errors.New("geocoder: lookup failed")
	// ErrMissingAPIKey is returned when the provider needs a key that is not configured.
	ErrMissingAPIKey = errors.New("geocoder: api key not configured")
)

// Location is a resolved place name.
type Location struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"latitude"`
	Lon              float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	// Source is the cache tier or provider that answered.
	Source string `json:"source,omitempty"`
	Raw    []byte `json:"-"`
}

// Geocoder resolves a free-form place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Location, error)
}

// Func adapts a function to the Geocoder interface.
type Func func(ctx context.Context, name string) (Location, error)

func (f Func) Geocode(ctx context.Context, name string) (Location, error) { return f(ctx, name) }

// normalize builds the cache key for a name.
func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
