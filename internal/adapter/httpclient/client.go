// Package httpclient is the net/http implementation of provider.Client.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/geocoder/internal/observability"
	"github.com/couchcryptid/geocoder/internal/provider"
)

const (
	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 4 << 20
	// maxErrorBody caps the body kept on a StatusError.
	maxErrorBody = 512

	userAgent = "couchcryptid-geocoder/1.0"
)

// Client performs GET requests with retries on transient failures.
type Client struct {
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	clock           clockwork.Clock
	metrics         *observability.Metrics
	logger          *slog.Logger
}

var _ provider.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first and the largest wait between retries.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(c *Client) {
		c.initialInterval = initial
		c.maxInterval = maxInterval
	}
}

// WithClock swaps the time source used for duration metrics.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// New creates a Client. maxRetries is the number of attempts after the first.
func New(timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		maxRetries:      uint64(maxRetries),
		initialInterval: 200 * time.Millisecond,
		maxInterval:     5 * time.Second,
		clock:           clockwork.NewRealClock(),
		metrics:         metrics,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of a 2xx response. Other statuses fail with
// *provider.StatusError; 429 and 5xx responses and network errors are retried.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	host := hostOf(rawURL)

	var body string
	attempt := 0
	operation := func() error {
		attempt++
		b, err := c.do(ctx, rawURL, host)
		if err == nil {
			body = b
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("upstream request failed", "host", host, "attempt", attempt, "error", err)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)); err != nil {
		return "", err
	}
	return body, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval
	b.MaxElapsedTime = 0
	return b
}

func (c *Client) do(ctx context.Context, rawURL, host string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", redact(err))
	}
	req.Header.Set("User-Agent", userAgent)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(host).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(host, "error").Inc()
		return "", redact(err)
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequests.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return "", &provider.StatusError{Code: resp.StatusCode, Body: msg}
	}
	return string(data), nil
}

func retryable(err error) bool {
	var se *provider.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// redact drops the query string from a *url.Error so API keys stay out of
// logs and error messages.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
			ue.URL = ue.URL[:i]
		}
	}
	return err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
