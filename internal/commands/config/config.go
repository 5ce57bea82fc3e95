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

package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage client configuration",
		Long: `View and manage how vibe finds and talks to the FarmVibes.AI service.

The service URL is taken from the first of: --url, the settings file,
FARMVIBES_AI_SERVICE_URL (also read from .env), the URL file written by
"config set-url", and finally the default local cluster address.`,
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newPathCommand())
	cmd.AddCommand(newSetURLCommand())
	cmd.AddCommand(newInitCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args)
	}

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration and service URL",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
}

// view is the printable form of the effective configuration.
type view struct {
	ConfigPath string         `json:"config_path" yaml:"config_path"`
	ServiceURL string         `json:"service_url" yaml:"service_url"`
	URLSource  string         `json:"url_source" yaml:"url_source"`
	URLFile    string         `json:"url_file,omitempty" yaml:"url_file,omitempty"`
	URLError   string         `json:"url_error,omitempty" yaml:"url_error,omitempty"`
	Settings   *config.Config `json:"settings" yaml:"settings"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if shared.GetRemote() {
		cfg.Service.Remote = true
	}

	v := view{ConfigPath: cfgPath, Settings: cfg}
	explicit := shared.GetURL()
	if explicit == "" {
		explicit = cfg.Service.URL
	}
	if resolved, err := config.ResolveServiceURL(explicit, cfg.Service.Remote); err != nil {
		v.URLError = err.Error()
	} else {
		v.ServiceURL = resolved.URL
		v.URLSource = string(resolved.Source)
		v.URLFile = resolved.Path
	}

	if shared.GetJSON() {
		return shared.WriteJSON(cmd.Context(), cmd.OutOrStdout(), v)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newSetURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-url <url>",
		Short: "Store the service URL of the local (or, with --remote, remote) cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SaveServiceURL(args[0], shared.GetRemote())
			if err != nil {
				return shared.NewInvalidInputError("failed to store service URL", err)
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Service URL written to %s", path)))
			}
			return nil
		},
	}
}

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return shared.NewInvalidInputError(fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Settings written to %s", path)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}

func configPath() (string, error) {
	if p := shared.GetConfigPath(); p != "" {
		return p, nil
	}
	p, err := config.ConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to determine config path: %w", err)
	}
	return p, nil
}
