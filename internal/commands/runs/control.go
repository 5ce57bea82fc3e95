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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "status <run-id>",
		Short:             "Print the current status of a run",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			summary, err := shared.Summarize(cmd, run)
			if err != nil {
				return err
			}
			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.Status)
			return nil
		}),
	}
}

type taskRow struct {
	Name           string           `json:"name"`
	Status         client.RunStatus `json:"status"`
	SubmissionTime *time.Time       `json:"submission_time"`
	StartTime      *time.Time       `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`
	Reason         string           `json:"reason,omitempty"`
}

func newTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "tasks <run-id>",
		Short:             "List the tasks of a run in submission order",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			tasks, err := run.TaskDetails(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]taskRow, len(tasks))
			for i, t := range tasks {
				rows[i] = taskRow{
					Name:           t.Name,
					Status:         t.Status,
					SubmissionTime: t.SubmissionTime,
					StartTime:      t.StartTime,
					EndTime:        t.EndTime,
					Reason:         t.Reason,
				}
			}
			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tSTATUS\tSTART\tEND")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Status, formatTime(r.StartTime), formatTime(r.EndTime))
			}
			return w.Flush()
		}),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateTime)
}

func newOutputCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "output <run-id>",
		Short: "Print the output of a finished run as JSON",
		Long: `Print the output of a run as JSON. Output exists only once the run is
done; for any other status the command fails.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			output, err := run.Output(cmd.Context())
			if err != nil {
				return err
			}
			if output == nil {
				status, err := run.Status(cmd.Context())
				if err != nil {
					return err
				}
				return shared.NewRunFailedError(fmt.Sprintf("run %s has no output (status: %s)", run.ID, status), nil)
			}
			return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), output)
		}),
	}
}

func newReasonCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "reason <run-id>",
		Short:             "Explain the current state of a run",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			reason, err := run.Reason(cmd.Context())
			if err != nil {
				return err
			}
			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), map[string]string{
					"id":     run.ID,
					"reason": reason,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), reason)
			return nil
		}),
	}
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "cancel <run-id>",
		Short:             "Cancel a run",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteActiveRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			if _, err := run.Cancel(cmd.Context()); err != nil {
				return fmt.Errorf("failed to cancel run %s: %w", run.ID, err)
			}
			summary, err := shared.Summarize(cmd, run)
			if err != nil {
				return err
			}
			return shared.PrintSummary(cmd, "Cancelled", summary)
		}),
	}
}

func newResubmitCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:               "resubmit <run-id>",
		Short:             "Submit a copy of a run",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: withRun(func(cmd *cobra.Command, c *client.Client, run *client.Run) error {
			next, err := run.Resubmit(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to resubmit run %s: %w", run.ID, err)
			}

			var summary shared.RunSummary
			if wait {
				summary, err = shared.WaitForRun(cmd, next, 0)
			} else {
				summary, err = shared.Summarize(cmd, next)
			}
			if summary.ID != "" {
				if perr := shared.PrintSummary(cmd, "Resubmitted", summary); perr != nil {
					return perr
				}
			}
			return err
		}),
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the new run to finish")
	return cmd
}
