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

package runs

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/monitor"
	"github.com/tombee/farmvibes/pkg/client"
)

func newMonitorCommand() *cobra.Command {
	var opts client.MonitorOptions

	cmd := &cobra.Command{
		Use:   "monitor <run-id>",
		Short: "Show live task progress of a run",
		Long: `Redraw the run status and its task table until the run finishes.
Low disk space on the service cache is checked periodically and shown as a
warning. Reaching --timeout stops monitoring without an error.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			if shared.GetJSON() {
				// Frames go to stderr so stdout stays valid JSON.
				opts.Presenter = monitor.New(cmd.ErrOrStderr())
			}
			summary, err := shared.MonitorRun(cmd, run, opts)
			if summary.ID != "" && shared.GetJSON() {
				if perr := shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), summary); perr != nil {
					return perr
				}
			}
			return err
		}),
	}

	cmd.Flags().DurationVar(&opts.RefreshInterval, "refresh", time.Second, "Time between refreshes")
	cmd.Flags().DurationVar(&opts.WarningRefreshInterval, "warning-refresh", 5*time.Minute, "Time between disk space checks")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Stop monitoring after this long (0 means until finished)")
	return cmd
}
