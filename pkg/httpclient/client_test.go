package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/pkg/metrics"
)

func TestNew_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	client, err := New(cfg)

	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, cfg.Timeout, client.Timeout)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0

	client, err := New(cfg)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNew_DoesNotRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(DefaultConfig())
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestNew_SetsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "vibe/test"
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "vibe/test", got)
}

func TestNew_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	collector := metrics.New()
	cfg := DefaultConfig()
	cfg.Metrics = collector
	client, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	count, err := testutil.GatherAndCount(collector.Registry(), "farmvibes_client_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	client, err := New(cfg)
	require.NoError(t, err)

	// First request consumes the only token.
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.Error(t, err)
}

func TestNew_TLSConfiguration(t *testing.T) {
	client, err := New(DefaultConfig())
	require.NoError(t, err)

	// The outermost transport is the logging wrapper when metrics and rate
	// limiting are off.
	lt, ok := client.Transport.(*loggingTransport)
	require.True(t, ok, "expected *loggingTransport, got %T", client.Transport)

	base, ok := lt.base.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, base.TLSClientConfig)
	assert.GreaterOrEqual(t, base.TLSClientConfig.MinVersion, uint16(0x0303))
	assert.Equal(t, 4, base.MaxIdleConnsPerHost)
}
