package system

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/testing/mock"
)

func TestMetrics(t *testing.T) {
	mock.Isolate(t)
	svc := mock.NewService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, _, err := mock.Execute(t, NewCommand(), "metrics")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cpu_usage:")
	assert.Contains(t, stdout, "200.00 GiB")
}

func TestDiskCheckEnoughSpace(t *testing.T) {
	mock.Isolate(t)
	svc := mock.NewService(t)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL(), JSON: true})()

	stdout, _, err := mock.Execute(t, NewCommand(), "disk-check")
	require.NoError(t, err)

	var out struct {
		OK       bool     `json:"ok"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.OK)
	assert.Empty(t, out.Warnings)
}

func TestDiskCheckLowSpace(t *testing.T) {
	mock.Isolate(t)
	svc := mock.NewService(t)
	svc.SetDiskFree(10 << 30)
	defer shared.SetFlagsForTest(shared.GlobalFlags{URL: svc.URL()})()

	stdout, stderr, err := mock.Execute(t, NewCommand(), "disk-check")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "10.00 GiB left")
}
