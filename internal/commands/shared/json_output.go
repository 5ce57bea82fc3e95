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
	"encoding/json"
	"io"

	"github.com/tombee/farmvibes/internal/jq"
)

// JSONError is the envelope printed on failure when JSON output is on.
type JSONError struct {
	Success    bool   `json:"success"`
	Code       int    `json:"exit_code"`
	Message    string `json:"message"`
	Type       string `json:"error_type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteJSON writes v as indented JSON. When --jq is set, every value the
// filter emits is written instead, one document per value.
func WriteJSON(ctx context.Context, w io.Writer, v any) error {
	expr := GetJQ()
	if expr == "" {
		return encodeJSON(w, v)
	}

	results, err := jq.NewExecutor(0, 0).Execute(ctx, expr, v)
	if err != nil {
		return NewInvalidInputError("jq filter failed", err)
	}
	for _, r := range results {
		if err := encodeJSON(w, r); err != nil {
			return err
		}
	}
	return nil
}

// ValidateJQ checks the --jq expression before any request is made.
func ValidateJQ() error {
	if err := jq.NewExecutor(0, 0).Validate(GetJQ()); err != nil {
		return NewInvalidInputError("invalid --jq expression", err)
	}
	return nil
}
