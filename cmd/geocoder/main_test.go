package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geocoder/internal/config"
	"github.com/couchcryptid/geocoder/internal/geocoder"
	"github.com/couchcryptid/geocoder/internal/observability"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--env-file", writeEnvFile(t, "")))
	err := cmd.Execute()
	return out.String(), err
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPClientTimeout:    time.Second,
		HTTPClientMaxRetries: 0,
		IPGeoBaseEnabled:     true,
		MapboxLimit:          5,
	}
}

func TestGeocodeCommand_Localhost(t *testing.T) {
	out, err := run(t, "geocode", "127.0.0.1", "--provider", "ip_geo_base")
	require.NoError(t, err)

	var got struct {
		Provider string           `json:"provider"`
		Results  []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ip_geo_base", got.Provider)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "localhost", got.Results[0]["city"])
	assert.Nil(t, got.Results[0]["latitude"])
}

func TestGeocodeCommand_UnknownProvider(t *testing.T) {
	_, err := run(t, "geocode", "Paris", "--provider", "google")
	require.ErrorIs(t, err, geocoder.ErrProviderNotRegistered)
}

func TestReverseCommand_InvalidCoordinates(t *testing.T) {
	_, err := run(t, "reverse", "north", "2.35")
	require.ErrorContains(t, err, "latitude")

	_, err = run(t, "reverse", "48.85", "200")
	require.ErrorContains(t, err, "longitude")
}

func TestReverseCommand_Unsupported(t *testing.T) {
	t.Setenv("IPGEOBASE_ENABLED", "true")
	_, err := run(t, "reverse", "--provider", "ip_geo_base", "48.85", "2.35")
	require.ErrorContains(t, err, "not supported")
}

func TestProvidersCommand(t *testing.T) {
	t.Setenv("BAIDU_API_KEY", "test-ak")

	out, err := run(t, "providers")
	require.NoError(t, err)

	var got struct {
		Default   string   `json:"default"`
		Providers []string `json:"providers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "baidu", got.Default)
	assert.Equal(t, []string{"baidu", "ip_geo_base", "chain"}, got.Providers)
}

func TestProvidersCommand_EnvFile(t *testing.T) {
	envFile := writeEnvFile(t, "IPGEOBASE_ENABLED=false\nMAPBOX_TOKEN=pk.from-file\n")
	t.Cleanup(func() {
		os.Unsetenv("IPGEOBASE_ENABLED")
		os.Unsetenv("MAPBOX_TOKEN")
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"providers", "--env-file", envFile})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"mapbox"`)
	assert.NotContains(t, out.String(), `"ip_geo_base"`)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	assert.NoError(t, loadEnvFile(missing, false))
	assert.Error(t, loadEnvFile(missing, true))
}

func TestBuildRegistry(t *testing.T) {
	cfg := testConfig()
	cfg.BaiduAPIKey = "test-ak"
	cfg.MapboxEnabled = true
	cfg.MapboxToken = "pk.test"
	cfg.DefaultProvider = "mapbox"

	reg, err := buildRegistry(cfg, observability.NewMetricsForTesting(), observability.DiscardLogger())
	require.NoError(t, err)
	defer reg.Close()

	assert.Equal(t, []string{"baidu", "ip_geo_base", "mapbox", "chain"}, reg.Names())
	assert.Equal(t, "mapbox", reg.DefaultName())
}

func TestBuildRegistry_SingleProviderHasNoChain(t *testing.T) {
	reg, err := buildRegistry(testConfig(), observability.NewMetricsForTesting(), observability.DiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"ip_geo_base"}, reg.Names())
}

func TestBuildRegistry_UnknownDefault(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultProvider = "google"

	_, err := buildRegistry(cfg, observability.NewMetricsForTesting(), observability.DiscardLogger())
	require.ErrorContains(t, err, "DEFAULT_PROVIDER")
}

func TestBuildRegistry_MissingIP2LocationDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.IP2LocationDBPath = filepath.Join(t.TempDir(), "missing.BIN")

	_, err := buildRegistry(cfg, observability.NewMetricsForTesting(), observability.DiscardLogger())
	require.Error(t, err)
}

func TestParseCoordinate(t *testing.T) {
	f, err := parseCoordinate("-33.8688", 90)
	require.NoError(t, err)
	assert.InDelta(t, -33.8688, f, 1e-9)

	_, err = parseCoordinate("90.5", 90)
	assert.Error(t, err)
}
