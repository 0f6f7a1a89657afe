// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream HTTP client.
	HTTPClientTimeout    time.Duration
	HTTPClientMaxRetries int

	// DefaultProvider overrides the first registered provider as the default.
	DefaultProvider string

	BaiduAPIKey string

	IPGeoBaseEnabled bool

	MapboxToken   string
	MapboxEnabled bool
	MapboxLimit   int

	IP2LocationDBPath string
}

// New returns a viper instance with every default set and environment
// lookup enabled. Keys are the lower-case environment variable names.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("http_client_timeout", "5s")
	v.SetDefault("http_client_max_retries", "2")
	v.SetDefault("ipgeobase_enabled", "true")
	v.SetDefault("mapbox_limit", "5")

	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	return LoadFrom(New())
}

// LoadFrom reads configuration from v, which may carry bound command-line flags.
func LoadFrom(v *viper.Viper) (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration(v, "shutdown_timeout")
	if err != nil {
		return nil, err
	}
	clientTimeout, err := parsePositiveDuration(v, "http_client_timeout")
	if err != nil {
		return nil, err
	}
	maxRetries, err := parseIntInRange(v, "http_client_max_retries", 0, 10)
	if err != nil {
		return nil, err
	}
	mapboxLimit, err := parseIntInRange(v, "mapbox_limit", 1, 10)
	if err != nil {
		return nil, err
	}
	ipGeoBaseEnabled, err := parseBool(v, "ipgeobase_enabled", true)
	if err != nil {
		return nil, err
	}

	mapboxToken := strings.TrimSpace(v.GetString("mapbox_token"))
	mapboxEnabled, err := parseBool(v, "mapbox_enabled", mapboxToken != "")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        v.GetString("http_addr"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
		ShutdownTimeout: shutdownTimeout,

		HTTPClientTimeout:    clientTimeout,
		HTTPClientMaxRetries: maxRetries,

		DefaultProvider: strings.TrimSpace(v.GetString("default_provider")),

		BaiduAPIKey: strings.TrimSpace(v.GetString("baidu_api_key")),

		IPGeoBaseEnabled: ipGeoBaseEnabled,

		MapboxToken:   mapboxToken,
		MapboxEnabled: mapboxEnabled,
		MapboxLimit:   mapboxLimit,

		IP2LocationDBPath: strings.TrimSpace(v.GetString("ip2location_db_path")),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func envName(key string) string {
	return strings.ToUpper(key)
}

func parsePositiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", envName(key))
	}
	return d, nil
}

func parseIntInRange(v *viper.Viper, key string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", envName(key), lo, hi)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string, def bool) (bool, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", envName(key))
	}
	return b, nil
}
