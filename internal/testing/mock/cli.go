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

package mock

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
)

// Isolate clears the environment that drives service discovery and
// logging, points the config directory at a temporary one and shortens the
// poll interval.
func Isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"FARMVIBES_AI_SERVICE_URL",
		"FARMVIBES_AI_REMOTE",
		"FARMVIBES_AI_TIMEOUT",
		"FARMVIBES_AI_RATE_LIMIT",
		"FARMVIBES_DEBUG",
		"FARMVIBES_LOG_LEVEL",
		"LOG_LEVEL",
		"LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("FARMVIBES_AI_POLL_INTERVAL", "5ms")
}

// Execute runs cmd with args and returns what it wrote to stdout and
// stderr.
func Execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	// Command groups run without the root here, so mirror its settings.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if args == nil {
		// cobra falls back to os.Args when args is nil
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
