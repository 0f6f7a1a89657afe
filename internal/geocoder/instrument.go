package geocoder

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/observability"
)

type instrumented struct {
	next    domain.Provider
	metrics *observability.Metrics
	logger  *slog.Logger
	clock   clockwork.Clock
}

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumented)

// WithClock swaps the time source used for call durations.
func WithClock(clock clockwork.Clock) InstrumentOption {
	return func(i *instrumented) { i.clock = clock }
}

// Instrument wraps p so every call is counted, timed and logged on failure.
// The wrapper keeps p's name.
func Instrument(p domain.Provider, metrics *observability.Metrics, logger *slog.Logger, opts ...InstrumentOption) domain.Provider {
	i := &instrumented{next: p, metrics: metrics, logger: logger, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Geocode(ctx context.Context, query string) ([]domain.Address, error) {
	start := i.clock.Now()
	results, err := i.next.Geocode(ctx, query)
	i.observe("geocode", start, len(results), err)
	return results, err
}

func (i *instrumented) Reverse(ctx context.Context, latitude, longitude float64) ([]domain.Address, error) {
	start := i.clock.Now()
	results, err := i.next.Reverse(ctx, latitude, longitude)
	i.observe("reverse", start, len(results), err)
	return results, err
}

// Close forwards to the wrapped provider when it holds resources.
func (i *instrumented) Close() {
	if c, ok := i.next.(interface{ Close() }); ok {
		c.Close()
	}
}

func (i *instrumented) observe(method string, start time.Time, n int, err error) {
	name := i.next.Name()
	outcome := Outcome(err)

	i.metrics.Requests.WithLabelValues(name, method, outcome).Inc()
	i.metrics.RequestDuration.WithLabelValues(name, method).Observe(i.clock.Since(start).Seconds())

	switch outcome {
	case "success":
		i.logger.Debug("geocoding succeeded", "provider", name, "method", method, "results", n)
	case "error", "invalid_credentials":
		i.logger.Warn("geocoding failed", "provider", name, "method", method, "outcome", outcome, "error", err)
	default:
		i.logger.Debug("geocoding failed", "provider", name, "method", method, "outcome", outcome, "error", err)
	}
}

// Outcome is the metrics label for a provider call result.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		return kind.String()
	}
	return "error"
}
