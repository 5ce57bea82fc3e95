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

import "github.com/spf13/pflag"

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	Verbose     bool
	Quiet       bool
	JSON        bool
	JQ          string
	ConfigPath  string
	URL         string
	Remote      bool
	MetricsFile string
}

var (
	flags GlobalFlags

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlags binds the global flags to fs, normally the root command's
// persistent flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-error output")
	fs.BoolVar(&flags.JSON, "json", false, "Output in JSON format")
	fs.StringVar(&flags.JQ, "jq", "", "Filter JSON output with a jq expression (implies --json)")
	fs.StringVar(&flags.ConfigPath, "config", "", "Path to config file (default: ~/.config/farmvibes-ai/config.yaml)")
	fs.StringVar(&flags.URL, "url", "", "FarmVibes.AI service URL (overrides every other source)")
	fs.BoolVar(&flags.Remote, "remote", false, "Use the remote service URL file")
	fs.StringVar(&flags.MetricsFile, "metrics-file", "", "Write client metrics in Prometheus text format to this file on exit")
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

func GetVerbose() bool {
	return flags.Verbose
}

func GetQuiet() bool {
	return flags.Quiet
}

// GetJSON reports whether output should be JSON. A jq filter implies JSON.
func GetJSON() bool {
	return flags.JSON || flags.JQ != ""
}

func GetJQ() string {
	return flags.JQ
}

func GetConfigPath() string {
	return flags.ConfigPath
}

func GetURL() string {
	return flags.URL
}

func GetRemote() bool {
	return flags.Remote
}

func GetMetricsFile() string {
	return flags.MetricsFile
}

// SetFlagsForTest replaces the global flags and returns a restore func.
func SetFlagsForTest(f GlobalFlags) func() {
	prev := flags
	flags = f
	return func() { flags = prev }
}
