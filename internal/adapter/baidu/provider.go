// Package baidu implements domain.Provider on the Baidu Maps geocoder v2 API.
package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/provider"
)

const (
	// Name identifies the provider in registries.
	Name = "baidu"

	// DefaultBaseURL is the public Baidu Maps API host.
	DefaultBaseURL = "http://api.map.baidu.com"

	geocodeEndpoint = "%s/geocoder/v2/?output=json&pois=0&ak=%s&address=%s"
	reverseEndpoint = "%s/geocoder/v2/?output=json&pois=0&ak=%s&location=%f,%f"
)

// statusKinds maps Baidu status values to error kinds. Statuses not listed,
// including 0 (OK), go on to field mapping.
var statusKinds = map[string]domain.ErrorKind{
	"INVALID_KEY": domain.KindInvalidCredentials,
	"3":           domain.KindInvalidCredentials, // permission check failed
	"5":           domain.KindInvalidCredentials, // ak does not exist or is illegal
	"101":         domain.KindInvalidCredentials, // ak parameter missing
	"102":         domain.KindInvalidCredentials, // caller not whitelisted
	"200":         domain.KindInvalidCredentials, // application does not exist
	"240":         domain.KindInvalidCredentials, // service disabled for this ak
	"1":           domain.KindNoResult,           // server internal error
	"2":           domain.KindNoResult,           // invalid request parameters
	"4":           domain.KindNoResult,           // quota check failed
	"302":         domain.KindNoResult,           // daily quota exceeded
}

// Provider geocodes addresses and coordinates. It does not accept IPs.
type Provider struct {
	provider.Base
	apiKey  string
	baseURL string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at another host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a Baidu provider. An empty apiKey is accepted here and
// reported as InvalidCredentials on every call.
func New(client provider.Client, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		Base:    provider.NewBase(client),
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return Name
}

// Geocode resolves a free-form address.
func (p *Provider) Geocode(ctx context.Context, address string) ([]domain.Address, error) {
	// The query shape is checked first: an IP is unsupported whether or not
	// a key is configured.
	if provider.IsIP(address) {
		return nil, domain.UnsupportedOperation(Name, "IP addresses are not supported")
	}
	if p.apiKey == "" {
		return nil, domain.InvalidCredentials(Name, "no API key provided")
	}

	query := fmt.Sprintf(geocodeEndpoint, p.baseURL, p.apiKey, rawURLEncode(address))
	return p.execute(ctx, query, "geocode", address)
}

// Reverse resolves coordinates.
func (p *Provider) Reverse(ctx context.Context, latitude, longitude float64) ([]domain.Address, error) {
	if p.apiKey == "" {
		return nil, domain.InvalidCredentials(Name, "no API key provided")
	}

	query := fmt.Sprintf(reverseEndpoint, p.baseURL, p.apiKey, latitude, longitude)
	return p.execute(ctx, query, "reverse", fmt.Sprintf("%f,%f", latitude, longitude))
}

func (p *Provider) execute(ctx context.Context, query, method, target string) ([]domain.Address, error) {
	body, err := p.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("baidu %s request: %w", method, err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, domain.NoResult(Name, "empty response for %q", target)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload) == 0 {
		return nil, domain.NoResult(Name, "unusable response for %q", target)
	}

	if status, ok := scalarString(payload["status"]); ok {
		switch statusKinds[status] {
		case domain.KindInvalidCredentials:
			return nil, domain.InvalidCredentials(Name, "API key rejected (status %s)", status)
		case domain.KindNoResult:
			return nil, domain.NoResult(Name, "status %s for %q", status, target)
		}
	}

	address, err := p.mapResult(payload["result"])
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindNoResult, Provider: Name, Message: fmt.Sprintf("decode result for %q", target), Err: err}
	}
	if address.IsZero() {
		return nil, domain.NoResult(Name, "no result for %q", target)
	}
	return []domain.Address{address}, nil
}

func (p *Provider) mapResult(raw json.RawMessage) (domain.Address, error) {
	a := p.Defaults()

	// Baidu answers "result": [] when nothing matched.
	r, err := object(raw)
	if err != nil || r == nil {
		return a, err
	}

	// Nested objects may also come back as [] and are then skipped.
	location, _ := object(r["location"])
	component, _ := object(r["addressComponent"])

	a.Latitude = scalarFloat(location["lat"])
	a.Longitude = scalarFloat(location["lng"])
	a.StreetNumber = scalarField(component["street_number"])
	a.StreetName = scalarField(component["street"])
	a.City = scalarField(component["city"])
	a.CityDistrict = scalarField(component["district"])
	a.County = scalarField(component["province"])
	a.CountyCode = scalarField(r["cityCode"])
	return a, nil
}
