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

package httpclient

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tombee/farmvibes/pkg/metrics"
)

// Config configures the HTTP client shared by all calls of one service client.
type Config struct {
	// Timeout is the overall request timeout, including reading the body.
	// Default: 60s. Must be > 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// RateLimit caps outgoing requests per second (0 = unlimited).
	// Tight monitor loops against a shared cluster are the main use.
	RateLimit float64

	// RateBurst is the token bucket size when RateLimit is set.
	// Default: 1.
	RateBurst int

	// Logger receives one entry per request. Default: slog.Default().
	Logger *slog.Logger

	// Metrics, when set, counts and times every round trip.
	Metrics *metrics.Collector
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		UserAgent: "farmvibes-go-client/1.0",
		RateBurst: 1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %v", c.RateLimit)
	}

	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be >= 1 when rate_limit is set, got %d", c.RateBurst)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	return nil
}
