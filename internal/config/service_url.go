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
	"errors"
	"fmt"
	"os"
	"strings"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

// FallbackServiceURL is the address of a default local cluster.
const FallbackServiceURL = "http://192.168.49.2:30000/"

// URLSource tells where a resolved service URL came from.
type URLSource string

const (
	SourceExplicit URLSource = "explicit"
	SourceEnv      URLSource = "environment"
	SourceFile     URLSource = "file"
	SourceFallback URLSource = "fallback"
)

// ResolvedURL is a service URL with its origin.
type ResolvedURL struct {
	URL    string
	Source URLSource
	// Path is the URL file that was read, for SourceFile.
	Path string
}

// ResolveServiceURL picks the service URL. The first non-empty of these
// wins: explicit, then the FARMVIBES_AI_SERVICE_URL variable, then the URL
// file. For a local cluster a missing file falls back to
// FallbackServiceURL; for a remote one it is a *errors.ConfigError.
func ResolveServiceURL(explicit string, remote bool) (ResolvedURL, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return ResolvedURL{URL: u, Source: SourceExplicit}, nil
	}
	if u := strings.TrimSpace(os.Getenv(EnvServiceURL)); u != "" {
		return ResolvedURL{URL: u, Source: SourceEnv}, nil
	}

	path, err := ServiceURLPath(remote)
	if err != nil {
		return ResolvedURL{}, &vibeerrors.ConfigError{Key: "service_url", Reason: "cannot locate config directory", Cause: err}
	}

	u, err := readURLFile(path)
	switch {
	case err == nil:
		return ResolvedURL{URL: u, Source: SourceFile, Path: path}, nil
	case errors.Is(err, os.ErrNotExist) && !remote:
		return ResolvedURL{URL: FallbackServiceURL, Source: SourceFallback}, nil
	case errors.Is(err, os.ErrNotExist):
		return ResolvedURL{}, &vibeerrors.ConfigError{
			Key:    path,
			Reason: "remote service URL file not found",
			Cause:  err,
		}
	default:
		return ResolvedURL{}, &vibeerrors.ConfigError{Key: path, Reason: "failed to read service URL", Cause: err}
	}
}

func readURLFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	u := strings.TrimSpace(string(data))
	if u == "" {
		return "", fmt.Errorf("%s is empty: %w", path, os.ErrNotExist)
	}
	return u, nil
}
