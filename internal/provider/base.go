// Package provider holds what concrete geocoding providers share: the
// injected HTTP Client, record defaults and query-shape checks.
package provider

import (
	"context"
	"errors"

	"github.com/couchcryptid/geocoder/internal/domain"
)

// Base is embedded by HTTP-backed providers.
type Base struct {
	client Client
}

// NewBase wraps client. It panics on nil so a misconfigured provider fails
// at construction instead of on the first request.
func NewBase(client Client) Base {
	if client == nil {
		panic("provider: nil Client")
	}
	return Base{client: client}
}

// Get fetches url through the Client.
func (b Base) Get(ctx context.Context, url string) (string, error) {
	return b.client.Get(ctx, url)
}

// Defaults returns a record with every field unset.
func (Base) Defaults() domain.Address {
	return domain.Defaults()
}

// LocalhostDefaults returns the fixed loopback record.
func (Base) LocalhostDefaults() domain.Address {
	return domain.LocalhostDefaults()
}

// StatusCode extracts the HTTP status from a Client error, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
