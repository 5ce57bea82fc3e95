package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestTransport(t *testing.T, h http.HandlerFunc) *Transport {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tr, err := NewTransport(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)
	return tr
}

func TestTransport_SetsJSONHeaders(t *testing.T) {
	var accept, contentType, method string
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		contentType = r.Header.Get("Content-Type")
		method = r.Method
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})

	got, err := tr.Request(context.Background(), http.MethodPost, "v0/runs", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "abc"}, got)
	assert.Equal(t, "application/json", accept)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, http.MethodPost, method)
}

func TestTransport_ResolvesEndpointAgainstBase(t *testing.T) {
	var path, query string
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := tr.Request(context.Background(), http.MethodGet, "v0/runs?ids=x", nil)
	require.NoError(t, err)
	assert.Equal(t, "/v0/runs", path)
	assert.Equal(t, "ids=x", query)
}

func TestTransport_NonJSONSuccessBodyIsText(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	got, err := tr.Request(context.Background(), http.MethodGet, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
}

func TestTransport_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "message field",
			status: http.StatusNotFound,
			body:   `{"message": "Run abc not found"}`,
			want:   "404 Client Error: Not Found for url: %s/v0/runs/abc. Run abc not found",
		},
		{
			name:   "object without message",
			status: http.StatusBadRequest,
			body:   `{"detail": "bad"}`,
			want:   "400 Client Error: Bad Request for url: %s/v0/runs/abc. ",
		},
		{
			name:   "raw text",
			status: http.StatusInternalServerError,
			body:   "upstream exploded",
			want:   "500 Server Error: Internal Server Error for url: %s/v0/runs/abc. upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var base string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			base = srv.URL

			tr, err := NewTransport(base+"/", srv.Client(), nil)
			require.NoError(t, err)

			_, err = tr.Request(context.Background(), http.MethodGet, "v0/runs/abc", nil)
			var herr *vibeerrors.HTTPError
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.status, herr.StatusCode)
			assert.Equal(t, fmt.Sprintf(tt.want, base), err.Error())
		})
	}
}

func TestTransport_NetworkErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	tr, err := NewTransport(base+"/", nil, nil)
	require.NoError(t, err)

	_, err = tr.Request(context.Background(), http.MethodGet, "v0/workflows", nil)
	require.Error(t, err)
	var herr *vibeerrors.HTTPError
	assert.False(t, vibeerrors.As(err, &herr))
}
