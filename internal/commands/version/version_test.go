package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/testing/mock"
)

func withBuild(t *testing.T, flags shared.GlobalFlags) {
	t.Helper()
	shared.SetVersion("1.0.0", "test123", "2025-12-22")
	t.Cleanup(func() { shared.SetVersion("dev", "unknown", "unknown") })
	t.Cleanup(shared.SetFlagsForTest(flags))
}

func TestVersionText(t *testing.T) {
	withBuild(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewVersionCommand())
	require.NoError(t, err)

	assert.Contains(t, stdout, "vibe 1.0.0 ("+runtime.GOOS+"/"+runtime.GOARCH+")")
	assert.Contains(t, stdout, "commit:     test123")
	assert.Contains(t, stdout, "user agent: vibe/1.0.0")
}

func TestVersionJSON(t *testing.T) {
	withBuild(t, shared.GlobalFlags{})

	root := &cobra.Command{Use: "vibe"}
	shared.RegisterFlags(root.PersistentFlags())
	root.AddCommand(NewVersionCommand())

	stdout, _, err := mock.Execute(t, root, "version", "--json")
	require.NoError(t, err)

	var info Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info), stdout)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "test123", info.Commit)
	assert.Equal(t, "2025-12-22", info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, shared.UserAgent(), info.UserAgent)
}

func TestVersionJQ(t *testing.T) {
	withBuild(t, shared.GlobalFlags{JQ: ".user_agent"})

	stdout, _, err := mock.Execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Equal(t, `"vibe/1.0.0 (`+runtime.GOOS+"/"+runtime.GOARCH+`)"`+"\n", stdout)
}

func TestVersionRejectsArgs(t *testing.T) {
	withBuild(t, shared.GlobalFlags{})

	_, _, err := mock.Execute(t, NewVersionCommand(), "extra")
	assert.Error(t, err)
}
