package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geocoder/internal/observability"
	"github.com/couchcryptid/geocoder/internal/provider"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testClient(maxRetries int, opts ...Option) (*Client, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	opts = append([]Option{WithBackoff(time.Millisecond, time.Millisecond)}, opts...)
	return New(5*time.Second, maxRetries, metrics, observability.DiscardLogger(), opts...), metrics
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "1.2.3.4", r.URL.Query().Get("ip"))
		_, _ = w.Write([]byte("<ip-answer/>"))
	}))
	defer srv.Close()

	c, metrics := testClient(2)
	body, err := c.Get(context.Background(), srv.URL+"/geo?ip=1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "<ip-answer/>", body)

	host := strings.TrimPrefix(srv.URL, "http://")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(host, "200")))
}

func TestGet_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	c, _ := testClient(3)
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)

	var se *provider.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, se.Body, "Invalid Token")
	assert.Equal(t, int32(1), hits.Load())
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":0}`))
	}))
	defer srv.Close()

	c, _ := testClient(2)
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"status":0}`, body)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := testClient(2)
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, provider.StatusCode(err))
	assert.Equal(t, int32(3), hits.Load())
}

func TestGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := testClient(3)
	_, err := c.Get(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGet_RedactsQueryFromTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c, metrics := testClient(0)
	_, err := c.Get(context.Background(), srv.URL+"/geocoder/v2/?ak=secret-key&address=x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")

	host := strings.TrimPrefix(srv.URL, "http://")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(host, "error")))
}

func TestGet_ObservesDurationFromClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		clock.Advance(250 * time.Millisecond)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    r,
		}, nil
	})

	c, metrics := testClient(0, WithClock(clock), WithHTTPClient(&http.Client{Transport: transport}))
	body, err := c.Get(context.Background(), "http://geo.test/geo?ip=1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)

	expected := `
# HELP geocoder_upstream_duration_seconds Upstream HTTP attempt duration in seconds.
# TYPE geocoder_upstream_duration_seconds histogram
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="0.01"} 0
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="0.05"} 0
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="0.1"} 0
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="0.25"} 1
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="0.5"} 1
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="1"} 1
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="2.5"} 1
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="5"} 1
geocoder_upstream_duration_seconds_bucket{host="geo.test",le="+Inf"} 1
geocoder_upstream_duration_seconds_sum{host="geo.test"} 0.25
geocoder_upstream_duration_seconds_count{host="geo.test"} 1
`
	require.NoError(t, testutil.CollectAndCompare(metrics.UpstreamDuration, strings.NewReader(expected), "geocoder_upstream_duration_seconds"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "api.map.baidu.com", hostOf("http://api.map.baidu.com/geocoder/v2/?ak=x"))
	assert.Equal(t, "unknown", hostOf("::not a url"))
}
