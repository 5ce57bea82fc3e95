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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

func newListCommand() *cobra.Command {
	var (
		ids    []string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow runs",
		Long: `List workflow runs known to the service.

Without --field the summary fields are returned: ` + strings.Join(client.SummaryDefaultFields, ", ") + `.
Nested fields use dots, e.g. --field details.submission_time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			rows, err := c.ListRuns(cmd.Context(), ids, fields)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), rows)
			}
			columns := fields
			if len(columns) == 0 {
				columns = client.SummaryDefaultFields
			}
			return writeTable(cmd.OutOrStdout(), columns, rows)
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Only list these run ids (repeatable)")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "Fields to return (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("field", completion.CompleteRunFields)
	_ = cmd.RegisterFlagCompletionFunc("id", completion.CompleteRunIDs)
	return cmd
}

func writeTable(out io.Writer, columns []string, rows []map[string]any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case map[string]any, []any:
		if s := client.WorkflowLabel(x); s != "<inline workflow>" {
			return s
		}
		data, _ := json.Marshal(x)
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <run-id>",
		Short:             "Show the full record of a run",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.FirstArg(completion.CompleteRunIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(cmd)
			if err != nil {
				return err
			}
			rec, err := c.DescribeRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), rec)
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func printRecord(out io.Writer, rec *client.RunRecord) {
	label := func(s string) string { return shared.RenderLabel(fmt.Sprintf("%-11s", s)) }

	fmt.Fprintf(out, "%s %s\n", label("Run:"), rec.ID)
	fmt.Fprintf(out, "%s %s\n", label("Name:"), rec.Name)
	fmt.Fprintf(out, "%s %s\n", label("Workflow:"), client.WorkflowLabel(rec.Workflow))
	fmt.Fprintf(out, "%s %s\n", label("Status:"), shared.RenderRunStatus(rec.Details.Status))
	printTime(out, label("Submitted:"), rec.Details.SubmissionTime)
	printTime(out, label("Started:"), rec.Details.StartTime)
	printTime(out, label("Ended:"), rec.Details.EndTime)
	if rec.Details.StartTime != nil && rec.Details.EndTime != nil {
		fmt.Fprintf(out, "%s %s\n", label("Duration:"), rec.Details.EndTime.Sub(*rec.Details.StartTime).Round(time.Second))
	}
	if rec.Details.Reason != "" {
		fmt.Fprintf(out, "%s %s\n", label("Reason:"), rec.Details.Reason)
	}

	if st := rec.SpatioTemporalJSON; st != nil {
		fmt.Fprintf(out, "%s %s to %s\n", label("Period:"),
			st.StartDate.Format(time.DateOnly), st.EndDate.Format(time.DateOnly))
	}

	if len(rec.Parameters) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Header.Render("Parameters"))
		keys := make([]string, 0, len(rec.Parameters))
		for k := range rec.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %v\n", k, rec.Parameters[k])
		}
	}

	if len(rec.Output) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Header.Render("Output"))
		keys := make([]string, 0, len(rec.Output))
		for k := range rec.Output {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s %s\n", shared.SymbolInfo, k)
		}
	}
}

func printTime(out io.Writer, label string, t *time.Time) {
	if t == nil {
		return
	}
	fmt.Fprintf(out, "%s %s\n", label, t.Format(time.RFC3339))
}
