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

package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/tombee/farmvibes/pkg/errors"
)

// TimeRange is the closed interval a spatio-temporal run covers.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// RunRequest describes a run to submit. Either InputData, or both Geometry
// and TimeRange, must be set. InputData wins when both are present.
type RunRequest struct {
	// Workflow is a workflow name or an inline definition. Text holding a
	// JSON (or YAML) definition is sent in structured form.
	Workflow any

	// Name is a free-form label; it need not be unique.
	Name string

	Parameters map[string]any

	Geometry  orb.Geometry
	TimeRange *TimeRange

	InputData any
}

// RunDescriptor is the body of POST v0/runs.
type RunDescriptor struct {
	Name       string         `json:"name"`
	Workflow   any            `json:"workflow"`
	Parameters map[string]any `json:"parameters"`
	UserInput  any            `json:"user_input"`
}

// BuildRunDescriptor validates req and builds the submission payload. It
// makes no network calls.
func BuildRunDescriptor(req RunRequest, ser InputSerializer) (*RunDescriptor, error) {
	if ser == nil {
		ser = JSONInputSerializer{}
	}

	desc := &RunDescriptor{
		Name:       req.Name,
		Workflow:   normalizeWorkflow(req.Workflow),
		Parameters: req.Parameters,
	}

	switch {
	case req.InputData != nil:
		input, err := ser.SerializeInput(req.InputData)
		if err != nil {
			return nil, err
		}
		desc.UserInput = input

	case req.Geometry == nil || req.TimeRange == nil:
		return nil, &errors.ValidationError{
			Field:      "user_input",
			Message:    "either input data or both geometry and time range are required",
			Suggestion: "pass InputData, or set Geometry together with TimeRange",
		}

	default:
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(req.Geometry))
		desc.UserInput = SpatioTemporalJSON{
			StartDate: req.TimeRange.Start,
			EndDate:   req.TimeRange.End,
			GeoJSON:   fc,
		}
	}

	return desc, nil
}

// normalizeWorkflow replaces a textual workflow definition with its
// structured form. Plain workflow names are returned unchanged.
func normalizeWorkflow(w any) any {
	text, ok := w.(string)
	if !ok {
		return w
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		switch parsed.(type) {
		case map[string]any, []any:
			return parsed
		}
	}

	// A workflow name is a single line; a YAML definition never is.
	if strings.Contains(strings.TrimSpace(text), "\n") {
		var doc any
		if err := yaml.Unmarshal([]byte(text), &doc); err == nil {
			if m, ok := stringKeys(doc).(map[string]any); ok && len(m) > 0 {
				return m
			}
		}
	}

	return text
}

// stringKeys rewrites YAML mappings with non-string keys (e.g. `1: a`) so
// the definition can be sent as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	}
	return v
}

// WorkflowLabel renders a workflow reference (name or inline definition)
// for display.
func WorkflowLabel(w any) string {
	switch v := w.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return "<inline workflow>"
}
