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
	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for vibe
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe",
		Short: "vibe - FarmVibes.AI workflow client",
		Long: `vibe submits and tracks workflow runs on a FarmVibes.AI cluster.

It lists the workflows a cluster offers, submits runs over a region and time
range (or arbitrary input), waits for or monitors them, and reads their
status, task progress, failure reasons and outputs.

Run 'vibe config show' to see which service URL is in use.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	shared.RegisterFlags(cmd.PersistentFlags())

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// FlushMetrics writes client metrics to --metrics-file, if requested.
func FlushMetrics() error {
	return shared.FlushMetrics()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
