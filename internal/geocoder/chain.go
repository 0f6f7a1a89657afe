package geocoder

import (
	"context"
	"errors"

	"github.com/couchcryptid/geocoder/internal/domain"
)

// ChainName identifies a Chain in registries.
const ChainName = "chain"

// Chain is a Provider that tries its providers in order and returns the
// first success.
type Chain struct {
	providers []domain.Provider
}

// NewChain creates a Chain over providers.
func NewChain(providers ...domain.Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Name() string {
	return ChainName
}

func (c *Chain) Geocode(ctx context.Context, query string) ([]domain.Address, error) {
	return c.run(ctx, func(p domain.Provider) ([]domain.Address, error) {
		return p.Geocode(ctx, query)
	})
}

func (c *Chain) Reverse(ctx context.Context, latitude, longitude float64) ([]domain.Address, error) {
	return c.run(ctx, func(p domain.Provider) ([]domain.Address, error) {
		return p.Reverse(ctx, latitude, longitude)
	})
}

func (c *Chain) run(ctx context.Context, call func(domain.Provider) ([]domain.Address, error)) ([]domain.Address, error) {
	if len(c.providers) == 0 {
		return nil, domain.NoResult(ChainName, "no providers configured")
	}

	errs := make([]error, 0, len(c.providers))
	for _, p := range c.providers {
		results, err := call(p)
		if err == nil {
			return results, nil
		}
		// A cancelled caller gets its context error, not a fallback.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, err)
	}
	return nil, combine(errs)
}

// combine reduces the failures of every provider to one error. A transport
// failure wins over a rejected key, which wins over empty answers; only when
// every provider had nothing to offer is the result NoResult.
func combine(errs []error) error {
	var credentials error
	for _, err := range errs {
		switch domain.KindOf(err) {
		case domain.KindUnknown:
			return err
		case domain.KindInvalidCredentials:
			if credentials == nil {
				credentials = err
			}
		}
	}
	if credentials != nil {
		return credentials
	}
	return &domain.Error{
		Kind:     domain.KindNoResult,
		Provider: ChainName,
		Message:  "every provider failed",
		Err:      errors.Join(errs...),
	}
}
