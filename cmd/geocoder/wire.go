package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/geocoder/internal/adapter/baidu"
	"github.com/couchcryptid/geocoder/internal/adapter/httpclient"
	"github.com/couchcryptid/geocoder/internal/adapter/ip2location"
	"github.com/couchcryptid/geocoder/internal/adapter/ipgeobase"
	"github.com/couchcryptid/geocoder/internal/adapter/mapbox"
	"github.com/couchcryptid/geocoder/internal/config"
	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/geocoder"
	"github.com/couchcryptid/geocoder/internal/observability"
)

// buildRegistry registers every provider enabled in cfg, each instrumented,
// plus a fallback chain over them when more than one is enabled.
func buildRegistry(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*geocoder.Registry, error) {
	client := httpclient.New(cfg.HTTPClientTimeout, cfg.HTTPClientMaxRetries, metrics, logger)

	var providers []domain.Provider
	if cfg.BaiduAPIKey != "" {
		providers = append(providers, baidu.New(client, cfg.BaiduAPIKey))
	}
	if cfg.IPGeoBaseEnabled {
		providers = append(providers, ipgeobase.New(client))
	}
	if cfg.MapboxEnabled {
		providers = append(providers, mapbox.New(client, cfg.MapboxToken, mapbox.WithLimit(cfg.MapboxLimit)))
	}
	if cfg.IP2LocationDBPath != "" {
		db, err := ip2location.Open(cfg.IP2LocationDBPath)
		if err != nil {
			closeAll(providers)
			return nil, err
		}
		providers = append(providers, db)
	}

	reg := geocoder.NewRegistry(metrics)
	instrumented := make([]domain.Provider, 0, len(providers))
	for _, p := range providers {
		wrapped := geocoder.Instrument(p, metrics, logger)
		instrumented = append(instrumented, wrapped)
		if err := reg.Register(wrapped); err != nil {
			reg.Close()
			return nil, err
		}
		logger.Info("provider registered", "provider", p.Name())
	}
	if len(instrumented) > 1 {
		chain := geocoder.Instrument(geocoder.NewChain(instrumented...), metrics, logger)
		if err := reg.Register(chain); err != nil {
			reg.Close()
			return nil, err
		}
	}

	if cfg.DefaultProvider != "" {
		if err := reg.SetDefault(cfg.DefaultProvider); err != nil {
			reg.Close()
			return nil, fmt.Errorf("DEFAULT_PROVIDER: %w", err)
		}
	}
	return reg, nil
}

func closeAll(providers []domain.Provider) {
	for _, p := range providers {
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
