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

// Package workflows implements the "vibe workflows" command group.
package workflows

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

// NewCommand creates the workflows command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow", "wf"},
		Short:   "Inspect workflows offered by the service",
	}
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDescribeCommand())
	cmd.AddCommand(newYAMLCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			names, err := c.ListWorkflows(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list workflows: %w", err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "describe <workflow>",
		Short:             "Show the inputs, outputs and parameters of a workflow",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteWorkflowNames),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			desc, err := c.DescribeWorkflow(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to describe workflow %s: %w", args[0], err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), desc)
			}
			printDescription(cmd, desc)
			return nil
		},
	}
}

func printDescription(cmd *cobra.Command, desc *client.WorkflowDescription) {
	out := cmd.OutOrStdout()
	d := desc.Description

	fmt.Fprintln(out, shared.Header.Render("Workflow: "+desc.Name))
	if d.ShortDescription != "" {
		fmt.Fprintln(out, d.ShortDescription)
	}
	if d.LongDescription != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, d.LongDescription)
	}

	section := func(title string, values map[string]any, docs map[string]string) {
		if len(values) == 0 {
			return
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Header.Render(title))
		for _, k := range sortedKeys(values) {
			line := fmt.Sprintf("  %s %s", shared.SymbolInfo, k)
			if v := values[k]; v != nil && v != "" {
				line += " " + shared.RenderLabel(fmt.Sprintf("(%v)", v))
			}
			if doc := strings.TrimSpace(docs[k]); doc != "" {
				line += ": " + doc
			}
			fmt.Fprintln(out, line)
		}
	}
	section("Sources", desc.Inputs, d.Inputs)
	section("Sinks", desc.Outputs, d.Outputs)
	section("Parameters", desc.Parameters, d.Parameters)

	if len(d.TaskDescriptions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Header.Render("Tasks"))
		names := make([]string, 0, len(d.TaskDescriptions))
		for name := range d.TaskDescriptions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s %s: %s\n", shared.SymbolInfo, name, d.TaskDescriptions[name])
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newYAMLCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "yaml <workflow>",
		Short:             "Print the YAML definition of a workflow",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteWorkflowNames),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			text, err := c.GetWorkflowYAML(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch workflow %s: %w", args[0], err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), map[string]string{
					"name": args[0],
					"yaml": text,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
