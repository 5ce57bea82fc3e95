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
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvServiceURL   = "FARMVIBES_AI_SERVICE_URL"
	EnvRemote       = "FARMVIBES_AI_REMOTE"
	EnvTimeout      = "FARMVIBES_AI_TIMEOUT"
	EnvPollInterval = "FARMVIBES_AI_POLL_INTERVAL"
	EnvRateLimit    = "FARMVIBES_AI_RATE_LIMIT"
)

// Config is the client configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Client  ClientConfig  `yaml:"client"`
	Log     LogConfig     `yaml:"log"`
}

// ServiceConfig selects the FarmVibes.AI service.
type ServiceConfig struct {
	// URL overrides discovery when set.
	// Environment: FARMVIBES_AI_SERVICE_URL
	URL string `yaml:"url,omitempty"`

	// Remote selects the remote cluster URL file instead of the local one.
	// Environment: FARMVIBES_AI_REMOTE
	Remote bool `yaml:"remote"`
}

// ClientConfig tunes the HTTP client and polling.
type ClientConfig struct {
	// Timeout is the per-request timeout.
	// Environment: FARMVIBES_AI_TIMEOUT
	// Default: 60s
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// PollInterval is the wait between status reads in BlockUntilComplete.
	// Environment: FARMVIBES_AI_POLL_INTERVAL
	// Default: 10s
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`

	// RateLimit caps requests per second; 0 disables the limit.
	// Environment: FARMVIBES_AI_RATE_LIMIT
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	// RateBurst is the limiter burst size.
	// Default: 1
	RateBurst int `yaml:"rate_burst,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is json or text.
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout:      60 * time.Second,
			PollInterval: 10 * time.Second,
			RateBurst:    1,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the YAML file at configPath (a missing file is not an error),
// applies defaults and then environment overrides. A .env file in the
// working directory is loaded first without overriding variables that are
// already set.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, &vibeerrors.ConfigError{Key: ".env", Reason: "failed to load .env file", Cause: err}
	}

	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &vibeerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, &vibeerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed: " + err.Error(),
			Cause:  err,
		}
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files (default: ./.env). Missing files
// are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Client.Timeout == 0 {
		c.Client.Timeout = defaults.Client.Timeout
	}
	if c.Client.PollInterval == 0 {
		c.Client.PollInterval = defaults.Client.PollInterval
	}
	if c.Client.RateBurst == 0 {
		c.Client.RateBurst = defaults.Client.RateBurst
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// loadFromEnv applies environment overrides. Malformed values are errors
// rather than silently ignored.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv(EnvServiceURL); val != "" {
		c.Service.URL = strings.TrimSpace(val)
	}
	if val := os.Getenv(EnvRemote); val != "" {
		c.Service.Remote = val == "1" || strings.EqualFold(val, "true")
	}
	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return &vibeerrors.ConfigError{Key: EnvTimeout, Reason: "invalid duration " + strconv.Quote(val), Cause: err}
		}
		c.Client.Timeout = d
	}
	if val := os.Getenv(EnvPollInterval); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return &vibeerrors.ConfigError{Key: EnvPollInterval, Reason: "invalid duration " + strconv.Quote(val), Cause: err}
		}
		c.Client.PollInterval = d
	}
	if val := os.Getenv(EnvRateLimit); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return &vibeerrors.ConfigError{Key: EnvRateLimit, Reason: "invalid number " + strconv.Quote(val), Cause: err}
		}
		c.Client.RateLimit = f
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []string

	if c.Client.Timeout <= 0 {
		errs = append(errs, "client.timeout must be positive")
	}
	if c.Client.PollInterval <= 0 {
		errs = append(errs, "client.poll_interval must be positive")
	}
	if c.Client.RateLimit < 0 {
		errs = append(errs, "client.rate_limit must not be negative")
	}
	if c.Client.RateBurst < 1 {
		errs = append(errs, "client.rate_burst must be at least 1")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
