// Package ip2location implements domain.Provider on a local IP2Location BIN
// database. Lookups never leave the process.
//
// This product includes IP2Location LITE data available from
// https://lite.ip2location.com.
package ip2location

import (
	"context"
	"fmt"
	"strings"

	"github.com/ip2location/ip2location-go/v9"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/provider"
)

// Name identifies the provider in registries.
const Name = "ip2location"

// lookuper is the part of *ip2location.DB the provider uses.
type lookuper interface {
	Get_all(ip string) (ip2location.IP2Locationrecord, error)
	Close()
}

// Provider resolves IPv4 and IPv6 addresses against the database.
type Provider struct {
	db lookuper
}

// Open loads the BIN database at path.
func Open(path string) (*Provider, error) {
	db, err := ip2location.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("open ip2location database %s: %w", path, err)
	}
	return newWithDB(db), nil
}

func newWithDB(db lookuper) *Provider {
	return &Provider{db: db}
}

func (p *Provider) Name() string {
	return Name
}

// Close releases the database file.
func (p *Provider) Close() {
	p.db.Close()
}

// Geocode looks up an IP address.
func (p *Provider) Geocode(ctx context.Context, address string) ([]domain.Address, error) {
	if !provider.IsIP(address) {
		return nil, domain.UnsupportedOperation(Name, "only IP addresses are supported")
	}
	if provider.IsLoopback(address) {
		return []domain.Address{domain.LocalhostDefaults()}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := p.db.Get_all(address)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindNoResult, Provider: Name, Message: fmt.Sprintf("lookup %q", address), Err: err}
	}

	a := mapRecord(rec)
	if a.Country == nil && a.CountryCode == nil && a.Latitude == nil {
		return nil, domain.NoResult(Name, "no record for %q", address)
	}
	return []domain.Address{a}, nil
}

// Reverse is not supported.
func (p *Provider) Reverse(context.Context, float64, float64) ([]domain.Address, error) {
	return nil, domain.UnsupportedOperation(Name, "reverse geocoding is not supported")
}

func mapRecord(rec ip2location.IP2Locationrecord) domain.Address {
	a := domain.Defaults()
	a.City = value(rec.City)
	a.CityDistrict = value(rec.District)
	a.Zipcode = value(rec.Zipcode)
	a.Region = value(rec.Region)
	a.Country = value(rec.Country_long)
	a.CountryCode = value(rec.Country_short)
	// rec.Timezone is a UTC offset such as "+02:00", not a zone name.

	// Databases without coordinates report 0,0.
	if a.Country != nil && (rec.Latitude != 0 || rec.Longitude != 0) {
		a.Latitude = domain.Float(float64(rec.Latitude))
		a.Longitude = domain.Float(float64(rec.Longitude))
	}
	return a
}

// value maps the library's placeholder strings to nil.
func value(s string) *string {
	s = strings.TrimSpace(s)
	if s == "-" || strings.Contains(s, "unavailable") || strings.HasPrefix(s, "Invalid") {
		return nil
	}
	return domain.String(s)
}
