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

// Package diagnostics implements "vibe doctor".
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/config"
	"github.com/tombee/farmvibes/pkg/client"
)

// Check is the outcome of one doctor step.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DoctorResult contains the overall health check results
type DoctorResult struct {
	ConfigPath      string   `json:"config_path"`
	ConfigExists    bool     `json:"config_exists"`
	ServiceURL      string   `json:"service_url,omitempty"`
	URLSource       string   `json:"url_source,omitempty"`
	Checks          []Check  `json:"checks"`
	Recommendations []string `json:"recommendations"`
	Healthy         bool     `json:"healthy"`
}

func (r *DoctorResult) add(c Check, recommendation string) {
	r.Checks = append(r.Checks, c)
	if !c.OK {
		r.Healthy = false
		if recommendation != "" {
			r.Recommendations = append(r.Recommendations, recommendation)
		}
	}
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use: "doctor",
		Annotations: map[string]string{
			"group": "diagnostics",
		},
		Short: "Check configuration and service health",
		Long: `Check the vibe configuration and the FarmVibes.AI service it points to.

This command checks:
  - The settings file loads
  - A service URL can be resolved
  - The service answers and reports its time zone
  - Workflows can be listed
  - The service cache has enough free disk space

Exits non-zero when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runDoctor(ctx, cmd)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall time limit for the checks")
	return cmd
}

func runDoctor(ctx context.Context, cmd *cobra.Command) error {
	result := DoctorResult{Healthy: true, Recommendations: []string{}}

	// Step 1: settings file
	cfgPath := shared.GetConfigPath()
	if cfgPath == "" {
		var err error
		if cfgPath, err = config.ConfigPath(); err != nil {
			cfgPath = "unknown"
		}
	}
	result.ConfigPath = cfgPath
	if _, err := os.Stat(cfgPath); err == nil {
		result.ConfigExists = true
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		result.add(Check{Name: "settings", Error: err.Error()},
			"Fix the settings file or run 'vibe config init --force' to recreate it.")
		return output(cmd, result)
	}
	detail := "defaults (no settings file)"
	if result.ConfigExists {
		detail = "loaded"
	}
	result.add(Check{Name: "settings", OK: true, Detail: detail}, "")

	// Step 2: service URL
	remote := cfg.Service.Remote || shared.GetRemote()
	explicit := shared.GetURL()
	if explicit == "" {
		explicit = cfg.Service.URL
	}
	resolved, err := config.ResolveServiceURL(explicit, remote)
	if err != nil {
		result.add(Check{Name: "service url", Error: err.Error()}, "Run 'vibe config set-url <url>' or pass --url.")
		return output(cmd, result)
	}
	result.ServiceURL = resolved.URL
	result.URLSource = string(resolved.Source)
	result.add(Check{Name: "service url", OK: true, Detail: fmt.Sprintf("%s (%s)", resolved.URL, resolved.Source)}, "")

	c, err := shared.NewClient(cmd)
	if err != nil {
		result.add(Check{Name: "client", Error: err.Error()}, "")
		return output(cmd, result)
	}
	ctx, recorder := client.WithWarningRecorder(ctx)

	// Step 3: reachability
	tz, err := c.APITimeZone(ctx)
	if err != nil {
		result.add(Check{Name: "service", Error: err.Error()},
			fmt.Sprintf("Make sure the cluster is running and reachable at %s.", resolved.URL))
		return output(cmd, result)
	}
	result.add(Check{Name: "service", OK: true, Detail: "time zone " + tz.String()}, "")

	// Step 4: workflows
	names, err := c.ListWorkflows(ctx)
	if err != nil {
		result.add(Check{Name: "workflows", Error: err.Error()}, "")
	} else {
		result.add(Check{Name: "workflows", OK: true, Detail: fmt.Sprintf("%d available", len(names))}, "")
	}

	// Step 5: disk space
	before := len(recorder.Warnings())
	if err := c.VerifyDiskSpace(ctx); err != nil {
		result.add(Check{Name: "disk space", Error: err.Error()}, "")
	} else if warnings := recorder.Warnings()[before:]; len(warnings) > 0 {
		msgs := make([]string, 0, len(warnings))
		for _, w := range warnings {
			msgs = append(msgs, w.Message())
		}
		result.add(Check{Name: "disk space", Error: strings.Join(msgs, "; ")},
			"Free up space in the cluster cache before submitting large runs.")
	} else {
		result.add(Check{Name: "disk space", OK: true}, "")
	}

	return output(cmd, result)
}

func output(cmd *cobra.Command, result DoctorResult) error {
	if shared.GetJSON() {
		if err := shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		printResult(cmd, result)
	}

	if !result.Healthy {
		return shared.NewExecutionError("health check found issues", nil)
	}
	return nil
}

func printResult(cmd *cobra.Command, result DoctorResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shared.Header.Render("FarmVibes.AI Health Check"))
	fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Settings:"), result.ConfigPath)
	fmt.Fprintln(out)

	for _, c := range result.Checks {
		switch {
		case c.OK && c.Detail != "":
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("%s: %s", c.Name, c.Detail)))
		case c.OK:
			fmt.Fprintln(out, shared.RenderOK(c.Name))
		default:
			fmt.Fprintln(out, shared.RenderError(fmt.Sprintf("%s: %s", c.Name, c.Error)))
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(out, "  - %s\n", rec)
		}
	}

	fmt.Fprintln(out)
	if result.Healthy {
		fmt.Fprintln(out, "Overall Status: Healthy")
	} else {
		fmt.Fprintln(out, "Overall Status: Issues Found")
	}
}
