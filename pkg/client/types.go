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

	"github.com/araddon/dateparse"
	"github.com/paulmach/orb/geojson"
)

// RunStatus is the server-reported state of a workflow run or task.
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusQueued     RunStatus = "queued"
	StatusRunning    RunStatus = "running"
	StatusFailed     RunStatus = "failed"
	StatusDone       RunStatus = "done"
	StatusCancelled  RunStatus = "cancelled"
	StatusCancelling RunStatus = "cancelling"
)

var allStatuses = []RunStatus{
	StatusPending, StatusQueued, StatusRunning, StatusFailed,
	StatusDone, StatusCancelled, StatusCancelling,
}

// Finished reports whether no further transition is expected.
func (s RunStatus) Finished() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCancelled
}

// String implements fmt.Stringer.
func (s RunStatus) String() string {
	return string(s)
}

// ParseRunStatus validates a status string received from the service.
func ParseRunStatus(s string) (RunStatus, error) {
	for _, known := range allStatuses {
		if string(known) == s {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown run status %q", s)
}

// RunDetails is the timing and status block attached to a run and to each
// of its tasks.
type RunDetails struct {
	StartTime      *time.Time `json:"start_time"`
	SubmissionTime *time.Time `json:"submission_time"`
	EndTime        *time.Time `json:"end_time"`
	Reason         string     `json:"reason,omitempty"`
	Status         RunStatus  `json:"status"`
}

// UnmarshalJSON parses textual timestamps. A missing status means pending.
func (d *RunDetails) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartTime      *string `json:"start_time"`
		SubmissionTime *string `json:"submission_time"`
		EndTime        *string `json:"end_time"`
		Reason         *string `json:"reason"`
		Status         string  `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out RunDetails
	var err error
	if out.StartTime, err = parseTimestamp(raw.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	if out.SubmissionTime, err = parseTimestamp(raw.SubmissionTime); err != nil {
		return fmt.Errorf("submission_time: %w", err)
	}
	if out.EndTime, err = parseTimestamp(raw.EndTime); err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if raw.Reason != nil {
		out.Reason = *raw.Reason
	}

	out.Status = StatusPending
	if raw.Status != "" {
		if out.Status, err = ParseRunStatus(raw.Status); err != nil {
			return err
		}
	}

	*d = out
	return nil
}

// parseTimestamp accepts the ISO-8601 variants the service emits. Values
// without a zone are taken as UTC.
func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(*s), time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TaskDetail is one named task of a run.
type TaskDetail struct {
	Name string `json:"name"`
	RunDetails
}

// SpatioTemporalJSON is the user input of a run defined by a time range and
// a region.
type SpatioTemporalJSON struct {
	StartDate time.Time                  `json:"start_date"`
	EndDate   time.Time                  `json:"end_date"`
	GeoJSON   *geojson.FeatureCollection `json:"geojson"`
}

// UnmarshalJSON accepts dates with or without a zone.
func (s *SpatioTemporalJSON) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartDate string          `json:"start_date"`
		EndDate   string          `json:"end_date"`
		GeoJSON   json.RawMessage `json:"geojson"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := parseTimestamp(&raw.StartDate)
	if err != nil || start == nil {
		return fmt.Errorf("start_date %q: invalid timestamp", raw.StartDate)
	}
	end, err := parseTimestamp(&raw.EndDate)
	if err != nil || end == nil {
		return fmt.Errorf("end_date %q: invalid timestamp", raw.EndDate)
	}

	out := SpatioTemporalJSON{StartDate: *start, EndDate: *end}
	if len(raw.GeoJSON) > 0 && string(raw.GeoJSON) != "null" {
		fc, err := geojson.UnmarshalFeatureCollection(raw.GeoJSON)
		if err != nil {
			return fmt.Errorf("geojson: %w", err)
		}
		out.GeoJSON = fc
	}

	*s = out
	return nil
}

// RunRecord is the service's view of a run as returned by GET v0/runs/{id}.
type RunRecord struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Workflow    any                   `json:"workflow"`
	Parameters  map[string]any        `json:"parameters"`
	UserInput   json.RawMessage       `json:"user_input,omitempty"`
	Details     RunDetails            `json:"details"`
	TaskDetails map[string]RunDetails `json:"task_details"`

	// SpatioTemporalJSON is nil when the run was submitted with arbitrary
	// input data.
	SpatioTemporalJSON *SpatioTemporalJSON `json:"spatio_temporal_json,omitempty"`

	// Output is the decoded output. The wire form is compressed text.
	Output map[string]any `json:"output"`
}

// UnmarshalJSON decodes the compressed output and normalizes the workflow.
func (r *RunRecord) UnmarshalJSON(data []byte) error {
	type plain RunRecord
	var raw struct {
		plain
		SpatioTemporalJSON json.RawMessage `json:"spatio_temporal_json"`
		Output             json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := RunRecord(raw.plain)
	out.Workflow = normalizeWorkflow(out.Workflow)

	// Runs submitted with input data carry a user payload here that is not
	// a spatio-temporal envelope.
	if len(raw.SpatioTemporalJSON) > 0 && string(raw.SpatioTemporalJSON) != "null" {
		var stj SpatioTemporalJSON
		if err := json.Unmarshal(raw.SpatioTemporalJSON, &stj); err == nil {
			out.SpatioTemporalJSON = &stj
		}
	}

	output, err := decodeOutput(raw.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	out.Output = output

	*r = out
	return nil
}

// decodeOutput accepts the compressed wire string or an already decoded
// object. An empty string means no output yet.
func decodeOutput(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if strings.TrimSpace(encoded) == "" {
			return map[string]any{}, nil
		}
		text, err := Decode(encoded)
		if err != nil {
			return nil, err
		}
		raw = json.RawMessage(text)
	}

	output := map[string]any{}
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, err
	}
	return output, nil
}

// TaskDescription documents a workflow and its inputs, outputs and
// parameters.
type TaskDescription struct {
	Inputs           map[string]string `json:"inputs"`
	Outputs          map[string]string `json:"outputs"`
	Parameters       map[string]string `json:"parameters"`
	TaskDescriptions map[string]string `json:"task_descriptions"`
	ShortDescription string            `json:"short_description"`
	LongDescription  string            `json:"long_description"`
}

// WorkflowDescription is returned by GET v0/workflows/{name}?return_format=description.
type WorkflowDescription struct {
	Name        string          `json:"name"`
	Inputs      map[string]any  `json:"inputs"`
	Outputs     map[string]any  `json:"outputs"`
	Parameters  map[string]any  `json:"parameters"`
	Description TaskDescription `json:"description"`
}

// SystemMetrics is the free-form resource report of the service.
type SystemMetrics map[string]any

// DiskFree returns the free cache disk space in bytes, if reported.
func (m SystemMetrics) DiskFree() (float64, bool) {
	switch v := m["disk_free"].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// SummaryDefaultFields are the fields the service returns for a run listing
// when none are requested.
var SummaryDefaultFields = []string{"id", "workflow", "name", "details.status"}
