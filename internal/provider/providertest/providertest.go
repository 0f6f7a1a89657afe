// Package providertest provides Client stubs for provider tests.
package providertest

import (
	"context"
	"sync"
	"testing"

	"github.com/couchcryptid/geocoder/internal/provider"
)

// Unreachable returns a Client that fails the test if it is ever called.
func Unreachable(t testing.TB) provider.Client {
	t.Helper()
	return provider.ClientFunc(func(_ context.Context, url string) (string, error) {
		t.Errorf("unexpected network call to %s", url)
		return "", nil
	})
}

// Stub is a deterministic Client that records every requested URL.
type Stub struct {
	Body string
	Err  error

	mu   sync.Mutex
	urls []string
}

// Static returns a Stub answering every request with body.
func Static(body string) *Stub {
	return &Stub{Body: body}
}

// Failing returns a Stub answering every request with err.
func Failing(err error) *Stub {
	return &Stub{Err: err}
}

func (s *Stub) Get(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	s.urls = append(s.urls, url)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Body, nil
}

// URLs returns the requested URLs in call order.
func (s *Stub) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.urls...)
}

// Calls returns the number of requests made.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
