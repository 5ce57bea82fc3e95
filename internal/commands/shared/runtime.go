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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/internal/config"
	"github.com/tombee/farmvibes/internal/log"
	"github.com/tombee/farmvibes/pkg/client"
	"github.com/tombee/farmvibes/pkg/metrics"
)

var (
	metricsOnce sync.Once
	collector   *metrics.Collector
)

// Metrics returns the process-wide metrics collector.
func Metrics() *metrics.Collector {
	metricsOnce.Do(func() {
		collector = metrics.New()
	})
	return collector
}

// FlushMetrics writes the collector to --metrics-file, if set.
func FlushMetrics() error {
	path := GetMetricsFile()
	if path == "" {
		return nil
	}
	if err := Metrics().WriteToTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the settings file named by --config, or the default one.
func LoadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		if p, err := config.ConfigPath(); err == nil {
			path = p
		}
	}
	return config.Load(path)
}

// NewLogger builds the CLI logger. The environment wins over the settings
// file and --verbose wins over both.
func NewLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	lcfg := log.FromEnv()
	if os.Getenv("FARMVIBES_DEBUG") == "" && os.Getenv("FARMVIBES_LOG_LEVEL") == "" && os.Getenv("LOG_LEVEL") == "" {
		if cfg != nil && cfg.Log.Level != "" {
			lcfg.Level = cfg.Log.Level
		}
	}
	if os.Getenv("LOG_FORMAT") == "" && cfg != nil && cfg.Log.Format != "" {
		lcfg.Format = log.Format(cfg.Log.Format)
	}
	if GetVerbose() {
		lcfg.Level = "debug"
	}
	lcfg.Output = out
	return log.New(lcfg)
}

// UserAgent identifies vibe requests in the service logs, e.g.
// "vibe/1.2.0 (linux/amd64)".
func UserAgent() string {
	v, _, _ := GetVersion()
	return fmt.Sprintf("vibe/%s (%s/%s)", v, runtime.GOOS, runtime.GOARCH)
}

// NewClient builds a client from the global flags, the settings file and
// the environment. Warnings are printed to the command's stderr.
func NewClient(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if GetRemote() {
		cfg.Service.Remote = true
	}

	stderr := cmd.ErrOrStderr()
	logger := NewLogger(cfg, stderr)

	factory := &config.Factory{
		Config:  cfg,
		Logger:  logger,
		Metrics: Metrics(),
		URL:     GetURL(),
	}
	c, resolved, err := factory.NewClient(
		client.WithWarningHandler(printWarnings(stderr, logger)),
		client.WithUserAgent(UserAgent()),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("service url resolved",
		slog.String(log.EndpointKey, resolved.URL),
		slog.String("source", string(resolved.Source)))
	return c, nil
}

func printWarnings(w io.Writer, logger *slog.Logger) client.WarningHandler {
	var mu sync.Mutex
	return func(ctx context.Context, warning client.Warning) {
		logger.DebugContext(ctx, "client warning", slog.String("kind", warning.Kind()))
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, RenderWarn(warning.Message()))
	}
}
