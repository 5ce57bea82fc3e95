package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:30000")
	var ve *vibeerrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestNew_RejectsBadPollInterval(t *testing.T) {
	_, err := New("http://localhost:30000/", WithPollInterval(0))
	assert.Error(t, err)
}

func TestListRuns_RepeatsQueryKeys(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "a"}, {"id": "b"}})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	runs, err := c.ListRuns(context.Background(), []string{"a", "b"}, []string{"id", "details.status"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, "ids=a&ids=b&fields=id&fields=details.status", rawQuery)
}

func TestGetWorkflowYAML_KeepsKeyOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/workflows/data_ingestion/spaceeye/spaceeye", r.URL.Path)
		assert.Equal(t, "yaml", r.URL.Query().Get("return_format"))
		_, _ = io.WriteString(w, `{"name":"spaceeye","sources":{"user_input":["ingest.user_input"]},"sinks":{"raster":"ingest.raster"},"parameters":{"pc_key":null,"max_tiles":"123"}}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	out, err := c.GetWorkflowYAML(context.Background(), "data_ingestion/spaceeye/spaceeye")
	require.NoError(t, err)
	assert.Equal(t, `name: spaceeye
sources:
  user_input:
    - ingest.user_input
sinks:
  raster: ingest.raster
parameters:
  pc_key: null
  max_tiles: "123"
`, out)
}

func TestDescribeWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"inputs":     map[string]any{"user_input": "Time range and geometry."},
			"outputs":    map[string]any{"raster": "Output raster."},
			"parameters": map[string]any{"resolution": []any{10, "Spatial resolution."}},
			"description": map[string]any{
				"short_description": "Hello world!",
				"long_description":  "Test workflow.",
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	desc, err := c.DescribeWorkflow(context.Background(), "helloworld")
	require.NoError(t, err)
	assert.Equal(t, "helloworld", desc.Name)
	assert.Equal(t, "Hello world!", desc.Description.ShortDescription)
	assert.Contains(t, desc.Outputs, "raster")
}

func TestLogWarnings(t *testing.T) {
	var buf syncBuffer
	handler := LogWarnings(slog.New(slog.NewTextHandler(&buf, nil)))
	handler(context.Background(), TimeZoneWarning{Reason: "x."})
	assert.Contains(t, buf.String(), "kind=time_zone")
}
