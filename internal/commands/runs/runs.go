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

// Package runs implements the "vibe runs" command group.
package runs

import (
	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

// NewCommand creates the runs command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"run"},
		Short:   "Inspect and control workflow runs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return shared.ValidateJQ()
		},
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newTasksCommand())
	cmd.AddCommand(newOutputCommand())
	cmd.AddCommand(newReasonCommand())
	cmd.AddCommand(newCancelCommand())
	cmd.AddCommand(newResubmitCommand())
	cmd.AddCommand(newWaitCommand())
	cmd.AddCommand(newMonitorCommand())
	return cmd
}

// withRun resolves the run named by the first argument and calls fn.
func withRun(fn func(cmd *cobra.Command, c *client.Client, run *client.Run) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := shared.NewClient(cmd)
		if err != nil {
			return err
		}
		run, err := c.GetRunByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return fn(cmd, c, run)
	}
}
