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

// Package submit implements "vibe submit".
package submit

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/pkg/client"
)

type options struct {
	workflow string
	name     string
	geometry string
	start    string
	end      string
	input    string
	params   []string

	wait    bool
	timeout time.Duration
	monitor bool
}

// NewCommand creates the submit command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a workflow run",
		Long: `Submit a workflow run to the FarmVibes.AI service.

The workflow is a name from "vibe workflows list", a YAML definition or a
file holding one (prefix with @ to force reading a file).

Input is either a geometry with a time range, or arbitrary input data:

  vibe submit -w helloworld -n field --geometry 'POLYGON((...))' \
      --start 2024-01-01 --end 2024-02-01
  vibe submit -w helloworld -n field --input @input.yaml --param key=value

The geometry may be WKT or GeoJSON (geometry, feature or feature collection).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.workflow, "workflow", "w", "", "Workflow name, YAML definition or @file (required)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Run name (required)")
	cmd.Flags().StringVarP(&opts.geometry, "geometry", "g", "", "Region of interest as WKT or GeoJSON, or @file")
	cmd.Flags().StringVar(&opts.start, "start", "", "Start of the time range")
	cmd.Flags().StringVar(&opts.end, "end", "", "End of the time range")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Run input data as JSON or YAML, or @file")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Workflow parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Wait for the run to finish")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")
	cmd.Flags().BoolVar(&opts.monitor, "monitor", false, "Show live task progress until the run finishes")
	_ = cmd.MarkFlagRequired("workflow")
	_ = cmd.RegisterFlagCompletionFunc("workflow", completion.CompleteWorkflowFlag)
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("geometry", "input")
	cmd.MarkFlagsMutuallyExclusive("wait", "monitor")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts options) error {
	if err := shared.ValidateJQ(); err != nil {
		return err
	}
	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	c, err := shared.NewClient(cmd)
	if err != nil {
		return err
	}
	run, err := c.Submit(cmd.Context(), req)
	if err != nil {
		return err
	}

	var summary shared.RunSummary
	switch {
	case opts.monitor:
		summary, err = shared.MonitorRun(cmd, run, client.MonitorOptions{Timeout: opts.timeout})
	case opts.wait:
		summary, err = shared.WaitForRun(cmd, run, opts.timeout)
	default:
		summary, err = shared.Summarize(cmd, run)
	}
	if summary.ID != "" {
		if perr := shared.PrintSummary(cmd, "Submitted", summary); perr != nil {
			return perr
		}
	}
	return err
}

// buildRequest validates the flags and turns them into a RunRequest. Errors
// are reported before any request is made.
func buildRequest(opts options) (client.RunRequest, error) {
	workflow, err := readArg(opts.workflow)
	if err != nil {
		return client.RunRequest{}, shared.NewInvalidInputError("invalid --workflow", err)
	}
	params, err := parseParams(opts.params)
	if err != nil {
		return client.RunRequest{}, shared.NewInvalidInputError("invalid --param", err)
	}

	req := client.RunRequest{
		Workflow:   workflow,
		Name:       opts.name,
		Parameters: params,
	}

	if opts.input != "" {
		text, err := readArg(opts.input)
		if err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --input", err)
		}
		if req.InputData, err = parseInput(text); err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --input", err)
		}
		return req, nil
	}

	if opts.geometry != "" {
		text, err := readArg(opts.geometry)
		if err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --geometry", err)
		}
		if req.Geometry, err = parseGeometry(text); err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --geometry", err)
		}
	}

	if opts.start != "" || opts.end != "" {
		if opts.start == "" || opts.end == "" {
			return client.RunRequest{}, shared.NewInvalidInputError("--start and --end must be given together", nil)
		}
		start, err := parseTime(opts.start)
		if err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --start", err)
		}
		end, err := parseTime(opts.end)
		if err != nil {
			return client.RunRequest{}, shared.NewInvalidInputError("invalid --end", err)
		}
		req.TimeRange = &client.TimeRange{Start: start, End: end}
	}

	// Missing geometry or time range is reported by the client as a
	// validation error.
	return req, nil
}
