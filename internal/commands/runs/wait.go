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
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

func newWaitCommand() *cobra.Command {
	var (
		timeout     time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "wait <run-id>...",
		Short: "Wait for one or more runs to finish",
		Long: `Block until every run is done or failed. Cancelled runs are waited on
until the timeout, as they never complete.

The command fails if any run failed or the timeout passed.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completion.CompleteActiveRunIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			summaries, err := waitAll(cmd, c, args, timeout, concurrency)
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				if perr := shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), summaries); perr != nil {
					return perr
				}
			} else {
				for _, s := range summaries {
					if perr := shared.PrintSummary(cmd, "Finished", s); perr != nil {
						return perr
					}
				}
			}

			var failed []string
			for _, s := range summaries {
				if s.Status == client.StatusFailed {
					failed = append(failed, s.ID)
				}
			}
			if len(failed) > 0 {
				return shared.NewRunFailedError(fmt.Sprintf("%d of %d runs failed: %v", len(failed), len(summaries), failed), nil)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits forever)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "Maximum runs polled at once")
	return cmd
}

// waitAll waits on every run concurrently. Summaries keep the order of
// ids. A failed run is not an error here; a timeout or request error
// cancels the remaining waits.
func waitAll(cmd *cobra.Command, c *client.Client, ids []string, timeout time.Duration, concurrency int) ([]shared.RunSummary, error) {
	summaries := make([]shared.RunSummary, len(ids))

	g, ctx := errgroup.WithContext(cmd.Context())
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	spinner := shared.NewSpinner(cmd.ErrOrStderr())
	if !shared.GetQuiet() {
		spinner.Start(fmt.Sprintf("Waiting for %d run(s)", len(ids)))
	}
	defer spinner.Stop()

	for i, id := range ids {
		g.Go(func() error {
			run, err := c.GetRunByID(ctx, id)
			if err != nil {
				return err
			}
			if _, err := run.BlockUntilComplete(ctx, timeout); err != nil {
				return fmt.Errorf("run %s: %w", id, err)
			}
			status, err := run.Status(ctx)
			if err != nil {
				return err
			}
			summaries[i] = shared.RunSummary{
				ID:       run.ID,
				Name:     run.Name,
				Workflow: client.WorkflowLabel(run.Workflow),
				Status:   status,
			}
			if status == client.StatusFailed {
				reason, err := run.Reason(ctx)
				if err != nil {
					return err
				}
				summaries[i].Reason = reason
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
