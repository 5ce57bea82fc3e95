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
	"log/slog"

	"github.com/tombee/farmvibes/pkg/client"
	"github.com/tombee/farmvibes/pkg/metrics"
)

// Factory builds a client from configuration. Service URL discovery runs
// once, in NewClient.
type Factory struct {
	Config  *Config
	Logger  *slog.Logger
	Metrics *metrics.Collector

	// URL, when set, wins over every other source.
	URL string
}

// NewClient resolves the service URL and constructs the client.
func (f *Factory) NewClient(extra ...client.Option) (*client.Client, ResolvedURL, error) {
	cfg := f.Config
	if cfg == nil {
		cfg = Default()
	}

	explicit := f.URL
	if explicit == "" {
		explicit = cfg.Service.URL
	}
	resolved, err := ResolveServiceURL(explicit, cfg.Service.Remote)
	if err != nil {
		return nil, ResolvedURL{}, err
	}

	opts := []client.Option{
		client.WithTimeout(cfg.Client.Timeout),
		client.WithPollInterval(cfg.Client.PollInterval),
		client.WithRateLimit(cfg.Client.RateLimit, cfg.Client.RateBurst),
		client.WithMetrics(f.Metrics),
	}
	if f.Logger != nil {
		opts = append(opts, client.WithLogger(f.Logger))
	}
	opts = append(opts, extra...)

	c, err := client.New(resolved.URL, opts...)
	if err != nil {
		return nil, ResolvedURL{}, err
	}
	return c, resolved, nil
}
