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

// Package version implements "vibe version".
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/commands/shared"
)

// Info is the JSON form of "vibe version".
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	// UserAgent is sent with every request to the FarmVibes.AI service.
	UserAgent string `json:"user_agent"`
}

func currentInfo() Info {
	v, c, b := shared.GetVersion()
	return Info{
		Version:   v,
		Commit:    c,
		BuildDate: b,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		UserAgent: shared.UserAgent(),
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the vibe client build",
		Long: `Print the vibe client version, the commit and date it was built from,
and the User-Agent it identifies itself with to the FarmVibes.AI service.
Attach this output to bug reports against a cluster.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentInfo()
			if shared.GetJSON() {
				return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vibe %s (%s)\n", info.Version, info.Platform)
			fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
			fmt.Fprintf(out, "  built:      %s\n", info.BuildDate)
			fmt.Fprintf(out, "  go:         %s\n", info.GoVersion)
			fmt.Fprintf(out, "  user agent: %s\n", info.UserAgent)
			return nil
		},
	}
}
