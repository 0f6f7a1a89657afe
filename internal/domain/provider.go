package domain

import "context"

// Provider geocodes against one backend.
//
// Implementations hold no mutable state between calls and are safe for
// concurrent use. A successful call returns at least one Address; a failed
// call returns an *Error for the kinds in this package or the transport
// error unchanged in kind.
type Provider interface {
	// Geocode resolves a free-form address or an IP literal, depending on
	// what the backend supports.
	Geocode(ctx context.Context, query string) ([]Address, error)

	// Reverse resolves coordinates to the nearest address.
	Reverse(ctx context.Context, latitude, longitude float64) ([]Address, error)

	// Name is the stable lowercase identifier used to select the provider.
	Name() string
}
