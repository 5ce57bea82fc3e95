// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
)

func TestRootCommandIsQuietOnErrors(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "vibe", cmd.Use)
	assert.True(t, cmd.SilenceUsage, "usage must not be mixed into JSON output")
	assert.True(t, cmd.SilenceErrors, "errors are printed by HandleExitError")
	assert.Contains(t, cmd.Long, "FarmVibes.AI")
}

func TestRootGlobalFlags(t *testing.T) {
	fs := NewRootCommand().PersistentFlags()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"json", "", "false"},
		{"jq", "", ""},
		{"config", "", ""},
		{"url", "", ""},
		{"remote", "", "false"},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fs.Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestRootVersionRoundTrip(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-12-22")
	t.Cleanup(func() { SetVersion("dev", "unknown", "unknown") })

	v, c, b := GetVersion()
	assert.Equal(t, "1.2.3", v)
	assert.Equal(t, "abc123", c)
	assert.Equal(t, "2025-12-22", b)
}

func TestFlushMetricsWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibe.prom")
	t.Cleanup(shared.SetFlagsForTest(shared.GlobalFlags{MetricsFile: path}))

	shared.Metrics().ObserveRefresh("status")
	require.NoError(t, FlushMetrics())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "farmvibes_client_")
}

func TestFlushMetricsWithoutFileIsNoop(t *testing.T) {
	t.Cleanup(shared.SetFlagsForTest(shared.GlobalFlags{}))
	assert.NoError(t, FlushMetrics())
}
