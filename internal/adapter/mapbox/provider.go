// Package mapbox implements domain.Provider on the Mapbox Geocoding API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/provider"
)

const (
	// Name identifies the provider in registries.
	Name = "mapbox"

	// DefaultBaseURL is the Mapbox places endpoint.
	DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	// DefaultLimit is the number of candidates requested per query.
	DefaultLimit = 5
)

// Provider geocodes addresses and coordinates. Unlike the single-record
// backends it returns every candidate Mapbox ranks, best first.
type Provider struct {
	provider.Base
	token   string
	baseURL string
	limit   int
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at another host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLimit sets the number of candidates requested (1–10).
func WithLimit(n int) Option {
	return func(p *Provider) {
		if n >= 1 && n <= 10 {
			p.limit = n
		}
	}
}

// New creates a Mapbox provider.
func New(client provider.Client, token string, opts ...Option) *Provider {
	p := &Provider{
		Base:    provider.NewBase(client),
		token:   token,
		baseURL: DefaultBaseURL,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return Name
}

// Geocode converts a free-form address to candidate records.
func (p *Provider) Geocode(ctx context.Context, address string) ([]domain.Address, error) {
	if provider.IsIP(address) {
		return nil, domain.UnsupportedOperation(Name, "IP addresses are not supported")
	}
	if p.token == "" {
		return nil, domain.InvalidCredentials(Name, "no access token provided")
	}

	u := fmt.Sprintf("%s/%s.json", p.baseURL, url.PathEscape(address))
	return p.doRequest(ctx, u, "forward", address)
}

// Reverse converts coordinates to place details.
func (p *Provider) Reverse(ctx context.Context, latitude, longitude float64) ([]domain.Address, error) {
	if p.token == "" {
		return nil, domain.InvalidCredentials(Name, "no access token provided")
	}

	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", longitude, latitude)
	u := fmt.Sprintf("%s/%s.json", p.baseURL, coord)
	return p.doRequest(ctx, u, "reverse", coord)
}

func (p *Provider) doRequest(ctx context.Context, endpoint, method, target string) ([]domain.Address, error) {
	params := url.Values{
		"access_token": {p.token},
		"limit":        {strconv.Itoa(p.limit)},
	}

	body, err := p.Get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		switch provider.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &domain.Error{Kind: domain.KindInvalidCredentials, Provider: Name, Message: "access token rejected", Err: err}
		}
		return nil, fmt.Errorf("mapbox %s request: %w", method, err)
	}

	var resp response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &domain.Error{Kind: domain.KindNoResult, Provider: Name, Message: fmt.Sprintf("decode response for %q", target), Err: err}
	}

	results := make([]domain.Address, 0, len(resp.Features))
	for _, f := range resp.Features {
		if a := p.mapFeature(f); !a.IsZero() {
			results = append(results, a)
		}
	}
	if len(results) == 0 {
		return nil, domain.NoResult(Name, "no features for %q", target)
	}
	return results, nil
}

func (p *Provider) mapFeature(f feature) domain.Address {
	a := p.Defaults()
	if len(f.Center) == 2 {
		a.Longitude = domain.Float(f.Center[0])
		a.Latitude = domain.Float(f.Center[1])
	}
	if len(f.BBox) == 4 {
		a.Bounds = &domain.Bounds{West: f.BBox[0], South: f.BBox[1], East: f.BBox[2], North: f.BBox[3]}
	}
	a.StreetNumber = domain.String(f.Address)

	// The feature itself is the most specific layer; its context lists the
	// enclosing ones.
	self := contextEntry{ID: f.ID, Text: f.Text, ShortCode: f.Properties.ShortCode}
	for _, c := range append([]contextEntry{self}, f.Context...) {
		applyLayer(&a, c)
	}
	return a
}

func applyLayer(a *domain.Address, c contextEntry) {
	layer, _, _ := strings.Cut(c.ID, ".")
	text := domain.String(c.Text)

	switch layer {
	case "address":
		setOnce(&a.StreetName, text)
	case "neighborhood", "locality":
		setOnce(&a.CityDistrict, text)
	case "place":
		setOnce(&a.City, text)
	case "postcode":
		setOnce(&a.Zipcode, text)
	case "district":
		setOnce(&a.County, text)
	case "region":
		setOnce(&a.Region, text)
		if _, code, ok := strings.Cut(c.ShortCode, "-"); ok {
			setOnce(&a.RegionCode, domain.String(code))
		}
	case "country":
		setOnce(&a.Country, text)
		setOnce(&a.CountryCode, domain.String(strings.ToUpper(c.ShortCode)))
	}
}

func setOnce(field **string, v *string) {
	if *field == nil {
		*field = v
	}
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string    `json:"id"`
	Center     []float64 `json:"center"` // [lon, lat]
	BBox       []float64 `json:"bbox"`   // [minLon, minLat, maxLon, maxLat]
	Text       string    `json:"text"`
	Address    string    `json:"address"`
	Properties struct {
		ShortCode string `json:"short_code"`
	} `json:"properties"`
	Context []contextEntry `json:"context"`
}

type contextEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}
