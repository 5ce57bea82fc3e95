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

// Package system implements the "vibe system" command group.
package system

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

// NewCommand creates the system command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Inspect the FarmVibes.AI service",
	}
	cmd.AddCommand(newMetricsCommand())
	cmd.AddCommand(newDiskCheckCommand())
	return cmd
}

func newMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show service resource usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			m, err := c.SystemMetrics(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read system metrics: %w", err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), m)
			}

			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%s %v\n", shared.RenderLabel(fmt.Sprintf("%-14s", k+":")), m[k])
			}
			if free, ok := m.DiskFree(); ok {
				fmt.Fprintf(out, "%s %.2f GiB\n", shared.RenderLabel(fmt.Sprintf("%-14s", "cache free:")), free/(1<<30))
			}
			return nil
		},
	}
}

func newDiskCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disk-check",
		Short: "Check the free space of the service cache",
		Long: fmt.Sprintf(`Warn when the service cache has less than %d GiB free. The same check
runs before every submission.`, client.DiskFreeThreshold>>30),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}

			ctx, recorder := client.WithWarningRecorder(cmd.Context())
			if err := c.VerifyDiskSpace(ctx); err != nil {
				return fmt.Errorf("failed to check disk space: %w", err)
			}
			warnings := recorder.Warnings()

			if shared.GetJSON() {
				messages := make([]string, len(warnings))
				for i, w := range warnings {
					messages[i] = w.Message()
				}
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), map[string]any{
					"ok":       len(warnings) == 0,
					"warnings": messages,
				})
			}
			if len(warnings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Service cache has enough free space"))
			}
			return nil
		},
	}
}
