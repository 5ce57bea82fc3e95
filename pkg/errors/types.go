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

package errors

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is returned when the service answers with a 4xx or 5xx status.
// Message carries the server-supplied explanation, if any.
type HTTPError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Status is the reason phrase (e.g., "Not Found")
	Status string

	// URL is the request URL that failed
	URL string

	// Message is the server's "message" field, or the raw body when the
	// response was not a JSON object
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	kind := "Client Error"
	if e.StatusCode >= 500 {
		kind = "Server Error"
	}
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d %s: %s for url: %s. %s", e.StatusCode, kind, status, e.URL, e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *HTTPError) ErrorType() string {
	return "http"
}

// IsRetryable implements ErrorClassifier. The client never retries on its
// own; callers decide.
func (e *HTTPError) IsRetryable() bool {
	return false
}

// ValidationError represents invalid arguments supplied by the caller.
// It is raised before any network call is made.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "run", "workflow")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError represents configuration problems, such as a missing
// service URL file when a remote connection was requested.
type ConfigError struct {
	// Key is the configuration key or file that has the problem
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents operation timeouts.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "workflow run completion")
	Operation string

	// Duration is the configured deadline that was exceeded
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s operation timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *TimeoutError) ErrorType() string {
	return "timeout"
}

// IsRetryable implements ErrorClassifier.
func (e *TimeoutError) IsRetryable() bool {
	return true
}

// IsUserVisible implements UserVisibleError.
func (e *ConfigError) IsUserVisible() bool {
	return true
}

// UserMessage implements UserVisibleError.
func (e *ConfigError) UserMessage() string {
	return e.Reason
}

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	if e.Key == "" {
		return ""
	}
	return fmt.Sprintf("Create %s with the service URL, or pass --url explicitly", e.Key)
}
