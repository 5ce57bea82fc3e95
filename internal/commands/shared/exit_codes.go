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
	"errors"
	"fmt"
	"io"
	"os"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

// Exit codes for CLI commands
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitInvalidInput    = 2
	ExitRunFailed       = 3
	ExitTimeout         = 4
	ExitConfigError     = 5
	ExitServiceError    = 6
)

// ExitError carries an exit code through cobra's error return.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for generic failures (exit 1).
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for bad flags or arguments (exit 2).
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewRunFailedError reports a run that finished without success (exit 3).
func NewRunFailedError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitRunFailed, Message: msg, Cause: cause}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var validationErr *vibeerrors.ValidationError
	var timeoutErr *vibeerrors.TimeoutError
	var configErr *vibeerrors.ConfigError
	var httpErr *vibeerrors.HTTPError
	switch {
	case errors.As(err, &validationErr):
		return ExitInvalidInput
	case errors.As(err, &timeoutErr):
		return ExitTimeout
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &httpErr):
		return ExitServiceError
	}
	return ExitExecutionFailed
}

// HandleExitError prints err to stderr with any suggestion and exits.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(writeExitError(os.Stderr, err))
}

func writeExitError(w io.Writer, err error) int {
	code := ExitCode(err)
	suggestion := suggestionFor(err)

	if GetJSON() {
		_ = encodeJSON(w, JSONError{
			Success:    false,
			Code:       code,
			Message:    err.Error(),
			Type:       errorType(err),
			Suggestion: suggestion,
		})
		return code
	}

	fmt.Fprintln(w, RenderError(err.Error()))
	if suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return code
}

// suggestionFor returns the suggestion of the first user-visible error in
// the chain.
func suggestionFor(err error) string {
	var userErr vibeerrors.UserVisibleError
	if !errors.As(err, &userErr) || !userErr.IsUserVisible() {
		return ""
	}
	return userErr.Suggestion()
}

// errorType returns the category of the first classified error in the
// chain, if any.
func errorType(err error) string {
	var classified vibeerrors.ErrorClassifier
	if errors.As(err, &classified) {
		return classified.ErrorType()
	}
	return ""
}
