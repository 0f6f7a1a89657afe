//go:build mapbox

package mapbox

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geocoder/internal/adapter/httpclient"
	"github.com/couchcryptid/geocoder/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeProvider(t *testing.T) *Provider {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	client := httpclient.New(10*time.Second, 2, observability.NewMetricsForTesting(), observability.DiscardLogger())
	return New(client, token)
}

func TestSmoke_Geocode(t *testing.T) {
	p := smokeProvider(t)

	results, err := p.Geocode(context.Background(), "Austin, Texas")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	require.NotNil(t, best.Latitude)
	require.NotNil(t, best.Longitude)
	assert.InDelta(t, 30.27, *best.Latitude, 0.1, "lat should be near Austin")
	assert.InDelta(t, -97.74, *best.Longitude, 0.1, "lon should be near Austin")
	require.NotNil(t, best.CountryCode)
	assert.Equal(t, "US", *best.CountryCode)
}

func TestSmoke_Reverse(t *testing.T) {
	p := smokeProvider(t)

	results, err := p.Reverse(context.Background(), 30.2672, -97.7431)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.NotNil(t, results[0].City)
}

func TestSmoke_InvalidToken(t *testing.T) {
	client := httpclient.New(10*time.Second, 0, observability.NewMetricsForTesting(), observability.DiscardLogger())
	p := New(client, "pk.invalid")

	_, err := p.Geocode(context.Background(), "Austin, Texas")
	require.Error(t, err)
}
