package workflows

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/testing/mock"
)

func newService(t *testing.T) *mock.Service {
	t.Helper()
	mock.Isolate(t)
	svc := mock.NewService(t)
	svc.AddWorkflow("helloworld", map[string]any{
		"name":       "helloworld",
		"sources":    map[string]any{"user_input": []any{"hello.user_input"}},
		"sinks":      map[string]any{"raster": "hello.raster"},
		"parameters": map[string]any{"resolution": 10},
	})
	svc.AddWorkflow("data_ingestion/sentinel2/preprocess_s2", map[string]any{
		"name": "preprocess_s2",
	})
	return svc
}

func TestList(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, _, err := mock.Execute(t, NewCommand(), "list")
	require.NoError(t, err)
	assert.Equal(t, "data_ingestion/sentinel2/preprocess_s2\nhelloworld\n", stdout)
}

func TestListJSON(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL(), JSON: true})()

	stdout, _, err := mock.Execute(t, NewCommand(), "list")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &names))
	assert.Len(t, names, 2)
	assert.Equal(t, 1, svc.Calls("workflows"))
}

func TestDescribe(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, _, err := mock.Execute(t, NewCommand(), "describe", "helloworld")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Workflow: helloworld")
	assert.Contains(t, stdout, "Fake workflow helloworld")
	assert.Contains(t, stdout, "Sources")
	assert.Contains(t, stdout, "Region and time range.")
	assert.Contains(t, stdout, "Sinks")
}

func TestDescribeJQ(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL(), JQ: ".description.short_description"})()

	stdout, _, err := mock.Execute(t, NewCommand(), "describe", "helloworld")
	require.NoError(t, err)
	assert.Equal(t, "\"Fake workflow helloworld\"\n", stdout)
}

func TestDescribeNestedName(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, _, err := mock.Execute(t, NewCommand(), "describe", "data_ingestion/sentinel2/preprocess_s2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Workflow: data_ingestion/sentinel2/preprocess_s2")
}

func TestDescribeUnknown(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	_, _, err := mock.Execute(t, NewCommand(), "describe", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Equal(t, shared.ExitServiceError, shared.ExitCode(err))
}

func TestYAML(t *testing.T) {
	svc := newService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, _, err := mock.Execute(t, NewCommand(), "yaml", "helloworld")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: helloworld\n")
	assert.Contains(t, stdout, "resolution: 10")
	assert.Contains(t, stdout, "- hello.user_input")
}
