// Package geocoder selects and composes providers: a named Registry, a
// fallback Chain and a metrics/logging decorator.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/observability"
)

// ErrProviderNotRegistered is returned when a name has no provider.
var ErrProviderNotRegistered = errors.New("provider not registered")

// Registry holds providers by name. The first registered provider is the
// default until SetDefault picks another.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domain.Provider
	order     []string
	def       string
	metrics   *observability.Metrics
}

// NewRegistry creates an empty Registry.
func NewRegistry(metrics *observability.Metrics) *Registry {
	return &Registry{
		providers: make(map[string]domain.Provider),
		metrics:   metrics,
	}
}

// Register adds p under p.Name().
func (r *Registry) Register(p domain.Provider) error {
	name := p.Name()
	if name == "" {
		return errors.New("provider name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; ok {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	if r.def == "" {
		r.def = name
	}
	r.metrics.ProvidersRegistered.Set(float64(len(r.order)))
	return nil
}

// SetDefault makes name the provider used by Geocode and Reverse.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	r.def = name
	return nil
}

// Using returns the provider registered under name.
func (r *Registry) Using(name string) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return p, nil
}

// Default returns the default provider.
func (r *Registry) Default() (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.def == "" {
		return nil, fmt.Errorf("%w: registry is empty", ErrProviderNotRegistered)
	}
	return r.providers[r.def], nil
}

// DefaultName returns the default provider's name, or "" when empty.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Geocode resolves query with the default provider.
func (r *Registry) Geocode(ctx context.Context, query string) ([]domain.Address, error) {
	p, err := r.Default()
	if err != nil {
		return nil, err
	}
	return p.Geocode(ctx, query)
}

// Reverse resolves coordinates with the default provider.
func (r *Registry) Reverse(ctx context.Context, latitude, longitude float64) ([]domain.Address, error) {
	p, err := r.Default()
	if err != nil {
		return nil, err
	}
	return p.Reverse(ctx, latitude, longitude)
}

// CheckReadiness returns an error when no provider is registered.
func (r *Registry) CheckReadiness(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return errors.New("no geocoding provider configured")
	}
	return nil
}

// Close releases providers that hold resources, such as open databases.
func (r *Registry) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if c, ok := r.providers[name].(interface{ Close() }); ok {
			c.Close()
		}
	}
}
