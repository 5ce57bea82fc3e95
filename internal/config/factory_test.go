package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

func TestFactory_NewClientUsesResolvedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/workflows", r.URL.Path)
		_, _ = w.Write([]byte(`["helloworld"]`))
	}))
	defer srv.Close()

	dir := withConfigHome(t)
	writeURLFile(t, dir, serviceURLFile, srv.URL+"/")

	f := &Factory{Config: Default()}
	c, resolved, err := f.NewClient()
	require.NoError(t, err)
	assert.Equal(t, SourceFile, resolved.Source)

	names, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"helloworld"}, names)
	assert.Equal(t, Default().Client.PollInterval, c.PollInterval())
}

func TestFactory_ExplicitURLWins(t *testing.T) {
	withConfigHome(t)
	cfg := Default()
	cfg.Service.URL = "http://from-config:30000/"

	f := &Factory{Config: cfg, URL: "http://from-flag:30000/"}
	c, resolved, err := f.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:30000/", c.BaseURL())
	assert.Equal(t, SourceExplicit, resolved.Source)
}

func TestFactory_RemoteWithoutFile(t *testing.T) {
	withConfigHome(t)
	cfg := Default()
	cfg.Service.Remote = true

	_, _, err := (&Factory{Config: cfg}).NewClient()
	var ce *vibeerrors.ConfigError
	assert.ErrorAs(t, err, &ce)
}
