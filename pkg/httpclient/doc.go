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

// Package httpclient builds the *http.Client used to talk to the FarmVibes.AI
// REST API.
//
// Create a client with default settings:
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
// Customize configuration:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Timeout = 2 * time.Minute
//	cfg.RateLimit = 5 // requests per second
//	cfg.Metrics = metrics.New()
//	client, err := httpclient.New(cfg)
//
// # Retry Behavior
//
// None. A failed call surfaces to the caller immediately; the run lifecycle
// client decides what is safe to repeat.
//
// # Security
//
//   - Sensitive query parameters (api_key, token, password, etc.) are redacted from logs
//   - Authorization headers are never logged
//   - TLS 1.2 minimum with certificate validation enabled
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests (2xx status)
//   - Warn level: failed requests (4xx/5xx status, errors)
//   - Fields: method, url (sanitized), status, duration_ms, correlation_id, error
//
// Every request carries an X-Correlation-ID header. The ID from the request
// context is used when present.
package httpclient
