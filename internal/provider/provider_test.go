package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIP(t *testing.T) {
	tests := []struct {
		in   string
		ip   bool
		ipv6 bool
	}{
		{"127.0.0.1", true, false},
		{"88.188.221.14", true, false},
		{"::1", true, true},
		{"2001:db8::68", true, true},
		{"::ffff:10.0.0.1", true, true},
		{"fe80::1%eth0", false, false},
		{"not-an-ip", false, false},
		{"10 rue Gambetta, Paris", false, false},
		{"", false, false},
		{"256.1.1.1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.ip, IsIP(tt.in))
			assert.Equal(t, tt.ipv6, IsIPv6(tt.in))
		})
	}
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("127.0.0.1"))
	assert.True(t, IsLoopback("::1"))
	assert.False(t, IsLoopback("8.8.8.8"))
	assert.False(t, IsLoopback("localhost"))
}

func TestBase_GetDelegatesToClient(t *testing.T) {
	var gotURL string
	b := NewBase(ClientFunc(func(_ context.Context, url string) (string, error) {
		gotURL = url
		return "body", nil
	}))

	body, err := b.Get(context.Background(), "http://example.test/geo")
	require.NoError(t, err)
	assert.Equal(t, "body", body)
	assert.Equal(t, "http://example.test/geo", gotURL)
	assert.True(t, b.Defaults().IsZero())
	assert.Equal(t, "localhost", *b.LocalhostDefaults().City)
}

func TestNewBase_NilClientPanics(t *testing.T) {
	assert.Panics(t, func() { NewBase(nil) })
}

func TestStatusCode(t *testing.T) {
	err := fmt.Errorf("geocode: %w", &StatusError{Code: 401, Body: "Not Authorized"})
	assert.Equal(t, 401, StatusCode(err))
	assert.Equal(t, 0, StatusCode(errors.New("dial tcp: connection refused")))
	assert.Equal(t, "unexpected status 401: Not Authorized", (&StatusError{Code: 401, Body: "Not Authorized"}).Error())
	assert.Equal(t, "unexpected status 500", (&StatusError{Code: 500}).Error())
}
