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

package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/monitor"
	"github.com/tombee/farmvibes/pkg/client"
)

// RunSummary is the JSON form of a run handle.
type RunSummary struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Workflow string           `json:"workflow"`
	Status   client.RunStatus `json:"status"`
	Reason   string           `json:"reason,omitempty"`
}

// Summarize reads the current status of run.
func Summarize(cmd *cobra.Command, run *client.Run) (RunSummary, error) {
	status, err := run.Status(cmd.Context())
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		ID:       run.ID,
		Name:     run.Name,
		Workflow: client.WorkflowLabel(run.Workflow),
		Status:   status,
	}, nil
}

// WaitForRun blocks until run is done or failed, showing a spinner on
// stderr. A failed run is reported as an ExitRunFailed error carrying the
// service's reason.
func WaitForRun(cmd *cobra.Command, run *client.Run, timeout time.Duration) (RunSummary, error) {
	spinner := NewSpinner(cmd.ErrOrStderr())
	if !GetQuiet() {
		spinner.Start(fmt.Sprintf("Waiting for run %s", run.ID))
	}
	_, err := run.BlockUntilComplete(cmd.Context(), timeout)
	spinner.Stop()
	if err != nil {
		return RunSummary{}, err
	}
	return finish(cmd, run)
}

// MonitorRun renders live progress of run on stdout until it finishes or
// opts.Timeout passes.
func MonitorRun(cmd *cobra.Command, run *client.Run, opts client.MonitorOptions) (RunSummary, error) {
	if opts.Presenter == nil {
		opts.Presenter = monitor.New(cmd.OutOrStdout())
	}
	if err := run.Monitor(cmd.Context(), opts); err != nil {
		return RunSummary{}, err
	}
	return finish(cmd, run)
}

func finish(cmd *cobra.Command, run *client.Run) (RunSummary, error) {
	summary, err := Summarize(cmd, run)
	if err != nil {
		return RunSummary{}, err
	}
	if summary.Status != client.StatusFailed {
		return summary, nil
	}
	reason, err := run.Reason(cmd.Context())
	if err != nil {
		return summary, err
	}
	summary.Reason = reason
	return summary, NewRunFailedError(fmt.Sprintf("run %s failed", run.ID), errors.New(reason))
}

// PrintSummary writes a run summary as JSON or as one styled line.
func PrintSummary(cmd *cobra.Command, verb string, s RunSummary) error {
	if GetJSON() {
		return WriteJSON(cmd.Context(), cmd.OutOrStdout(), s)
	}
	if GetQuiet() {
		fmt.Fprintln(cmd.OutOrStdout(), s.ID)
		return nil
	}
	line := fmt.Sprintf("%s run %s %s %s [%s]",
		verb, s.ID, RenderLabel(fmt.Sprintf("(%s, %s)", s.Workflow, s.Name)), SymbolInfo, RenderRunStatus(s.Status))
	if s.Status == client.StatusFailed {
		fmt.Fprintln(cmd.OutOrStdout(), RenderError(line))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), RenderOK(line))
	}
	return nil
}
