package httpclient

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/tracing"
)

func TestLoggingTransport_SetsUserAgent(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	transport := newLoggingTransport(http.DefaultTransport, "test-agent/1.0", nil)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "test-agent/1.0", receivedUserAgent)
	// Caller's request is untouched.
	assert.Empty(t, req.Header.Get("User-Agent"))
}

func TestLoggingTransport_PreservesExistingUserAgent(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	transport := newLoggingTransport(http.DefaultTransport, "test-agent/1.0", nil)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2.0")

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "custom/2.0", receivedUserAgent)
}

func TestLoggingTransport_PropagatesCorrelationID(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get(tracing.HeaderCorrelationID)
	}))
	defer server.Close()

	transport := newLoggingTransport(http.DefaultTransport, "test-agent/1.0", nil)

	id := tracing.NewCorrelationID()
	ctx := tracing.ToContext(context.Background(), id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, id.String(), received)
}

func TestLoggingTransport_GeneratesCorrelationID(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get(tracing.HeaderCorrelationID)
	}))
	defer server.Close()

	transport := newLoggingTransport(http.DefaultTransport, "test-agent/1.0", nil)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, tracing.CorrelationID(received).IsValid())
}

func TestLoggingTransport_Logs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	transport := newLoggingTransport(http.DefaultTransport, "test-agent/1.0", logger)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/v0/runs?ids=abc&token=hunter2", nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":400`)
	assert.Contains(t, out, "ids=abc")
	assert.NotContains(t, out, "hunter2")
}
