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
	"os"
	"path/filepath"
)

const (
	// appDirName is the directory under XDG_CONFIG_HOME shared with the
	// FarmVibes.AI cluster tooling, which writes the service URL files.
	appDirName = "farmvibes-ai"

	serviceURLFile       = "service_url"
	remoteServiceURLFile = "remote_service_url"
	configFile           = "config.yaml"
)

// ConfigDir returns the FarmVibes.AI config directory:
// $XDG_CONFIG_HOME/farmvibes-ai, or ~/.config/farmvibes-ai when unset.
// ~/.config is used on macOS too, matching the cluster tooling.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName), nil
}

// EnsureConfigDir returns ConfigDir, creating it if needed.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// ServiceURLPath returns the path of the file holding the URL of the local
// cluster, or of the remote one when remote is set.
func ServiceURLPath(remote bool) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if remote {
		return filepath.Join(dir, remoteServiceURLFile), nil
	}
	return filepath.Join(dir, serviceURLFile), nil
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}
