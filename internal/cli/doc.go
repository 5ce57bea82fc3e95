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

/*
Package cli provides the root command of the vibe CLI.

This package creates the root Cobra command and handles global concerns like
version information, persistent flags, and exit codes. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	vibe
	├── workflows     List and describe workflows
	├── submit        Submit a workflow run
	├── runs          Inspect, wait for, monitor and control runs
	├── system        Cluster metrics and disk space check
	├── config        Service URL and settings
	├── version       Show version
	└── help          Show help (--json for machine-readable output)

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	err := rootCmd.Execute()
	if ferr := cli.FlushMetrics(); err == nil {
	    err = ferr
	}
	if err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v      Enable debug logging
	--quiet, -q        Print only identifiers
	--json             Output in JSON format
	--jq               Filter JSON output (implies --json)
	--config           Path to the settings file
	--url              FarmVibes.AI service URL
	--remote           Use the remote cluster URL file
	--metrics-file     Write client metrics in Prometheus text format

# Exit Codes

  - 0: success
  - 1: execution failed
  - 2: invalid input
  - 3: run failed or has no output
  - 4: timed out
  - 5: configuration error
  - 6: service error
*/
package cli
