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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tombee/farmvibes/internal/cli"
	"github.com/tombee/farmvibes/internal/commands/completion"
	"github.com/tombee/farmvibes/internal/commands/config"
	"github.com/tombee/farmvibes/internal/commands/diagnostics"
	"github.com/tombee/farmvibes/internal/commands/runs"
	"github.com/tombee/farmvibes/internal/commands/submit"
	"github.com/tombee/farmvibes/internal/commands/system"
	versioncmd "github.com/tombee/farmvibes/internal/commands/version"
	"github.com/tombee/farmvibes/internal/commands/workflows"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Workflow and run commands
	rootCmd.AddCommand(workflows.NewCommand())
	rootCmd.AddCommand(submit.NewCommand())
	rootCmd.AddCommand(runs.NewCommand())

	// Cluster and configuration
	rootCmd.AddCommand(system.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(diagnostics.NewDoctorCommand())

	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	// Interrupts stop polling loops; the run itself keeps going on the service.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if ferr := cli.FlushMetrics(); err == nil {
		err = ferr
	}
	if err != nil {
		cli.HandleExitError(err)
	}
}
