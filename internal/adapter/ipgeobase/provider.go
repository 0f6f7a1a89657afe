// Package ipgeobase implements domain.Provider on the ipgeobase.ru IPv4
// lookup service.
package ipgeobase

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/provider"
)

const (
	// Name identifies the provider in registries.
	Name = "ip_geo_base"

	// DefaultBaseURL is the public ipgeobase endpoint host.
	DefaultBaseURL = "http://ipgeobase.ru:7020"

	localhost = "127.0.0.1"
)

// Provider resolves IPv4 addresses. It has no reverse capability.
type Provider struct {
	provider.Base
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

// New creates an ipgeobase provider.
func New(client provider.Client, opts ...Option) *Provider {
	p := &Provider{
		Base:    provider.NewBase(client),
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

// Geocode resolves an IPv4 literal.
func (p *Provider) Geocode(ctx context.Context, address string) ([]domain.Address, error) {
	if !provider.IsIP(address) {
		return nil, domain.UnsupportedOperation(Name, "street addresses are not supported")
	}
	if provider.IsIPv6(address) {
		return nil, domain.UnsupportedOperation(Name, "IPv6 addresses are not supported")
	}
	if address == localhost {
		return []domain.Address{p.LocalhostDefaults()}, nil
	}

	query := fmt.Sprintf("%s/geo?ip=%s", p.baseURL, url.QueryEscape(address))
	body, err := p.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ip_geo_base geocode request: %w", err)
	}

	ip, err := decode(body)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindNoResult, Provider: Name, Message: fmt.Sprintf("decode response for %s", address), Err: err}
	}
	if ip == nil {
		return nil, domain.NoResult(Name, "no ip element for %s", address)
	}
	if msg := strings.TrimSpace(ip.Message); msg != "" {
		return nil, domain.NoResult(Name, "%s: %s", address, msg)
	}

	a := p.Defaults()
	a.Latitude = parseFloat(ip.Lat)
	a.Longitude = parseFloat(ip.Lng)
	a.City = domain.String(strings.TrimSpace(ip.City))
	a.CityDistrict = domain.String(strings.TrimSpace(ip.District))
	a.Region = domain.String(strings.TrimSpace(ip.Region))
	a.CountryCode = domain.String(strings.TrimSpace(ip.Country))
	// ipgeobase carries neither a postal code nor a region code.
	a.Zipcode = nil
	a.RegionCode = nil

	if a.IsZero() {
		return nil, domain.NoResult(Name, "empty answer for %s", address)
	}
	return []domain.Address{a}, nil
}

// Reverse is not offered by ipgeobase.
func (p *Provider) Reverse(_ context.Context, _, _ float64) ([]domain.Address, error) {
	return nil, domain.UnsupportedOperation(Name, "reverse geocoding is not supported")
}

// ipgeobase response types.

type answer struct {
	IP *ipElement `xml:"ip"`
}

type ipElement struct {
	Message  string `xml:"message"`
	Country  string `xml:"country"`
	City     string `xml:"city"`
	Region   string `xml:"region"`
	District string `xml:"district"`
	Lat      string `xml:"lat"`
	Lng      string `xml:"lng"`
}

// decode parses the answer document. The service declares windows-1251,
// so the decoder needs a charset-aware reader.
func decode(body string) (*ipElement, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var doc answer
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.IP, nil
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
