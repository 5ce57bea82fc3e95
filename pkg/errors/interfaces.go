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

// UserVisibleError is implemented by errors that vibe reports verbatim:
// a message for the person at the terminal and, where one exists, what to
// change (a flag, the service URL file, the run id).
type UserVisibleError interface {
	error

	// IsUserVisible is false for errors that only make sense in debug logs.
	IsUserVisible() bool

	// UserMessage is the one-line message printed after "Error:".
	UserMessage() string

	// Suggestion is printed on its own line, or is empty.
	Suggestion() string
}

// ErrorClassifier lets callers branch on a failure without matching on
// message text. ErrorType is reported as error_type in the JSON error
// envelope: "http" for error replies from the service, "timeout" for
// waits that ran out.
type ErrorClassifier interface {
	error

	ErrorType() string

	// IsRetryable reports whether repeating the same request could succeed,
	// e.g. a 503 from a cluster that is still starting. The client itself
	// never retries.
	IsRetryable() bool
}
