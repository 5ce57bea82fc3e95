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
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tombee/farmvibes/pkg/errors"
)

// Run is the client-side handle of one workflow run.
//
// Status, task details and output are cached. Once the run is observed in a
// finished state the cached values are final and no longer refetched;
// before that every read queries the service. Handles for the same run do
// not share their caches.
type Run struct {
	ID         string
	Name       string
	Workflow   any
	Parameters map[string]any

	client *Client
	state  runState
}

func newRun(c *Client, id, name string, workflow any, params map[string]any) *Run {
	return &Run{
		ID:         id,
		Name:       name,
		Workflow:   workflow,
		Parameters: params,
		client:     c,
		state:      runState{status: StatusPending},
	}
}

// runState holds the cached fields of a Run. It is only touched through its
// methods, which never overwrite a finished status.
type runState struct {
	mu          sync.Mutex
	status      RunStatus
	taskDetails []TaskDetail // set only once finished
	output      map[string]any
}

func (s *runState) currentStatus() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// finalStatus returns the cached status if it is finished.
func (s *runState) finalStatus() (RunStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.status.Finished()
}

// setStatus records an observed status and returns the effective one.
func (s *runState) setStatus(status RunStatus) RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Finished() {
		s.status = status
	}
	return s.status
}

func (s *runState) finalTaskDetails() ([]TaskDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskDetails == nil {
		return nil, false
	}
	return slices.Clone(s.taskDetails), true
}

func (s *runState) storeTaskDetails(details []TaskDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskDetails == nil {
		s.taskDetails = slices.Clone(details)
	}
}

func (s *runState) cachedOutput() (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output, s.output != nil
}

func (s *runState) storeOutput(out map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.output == nil {
		s.output = out
	}
	return s.output
}

// Status returns the run status, querying the service unless a finished
// status is already cached.
func (r *Run) Status(ctx context.Context) (RunStatus, error) {
	if status, ok := r.state.finalStatus(); ok {
		r.client.metrics.ObserveCacheHit("status")
		return status, nil
	}

	var rows []struct {
		Status string `json:"details.status"`
	}
	if err := r.client.listRuns(ctx, []string{r.ID}, nil, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", &errors.NotFoundError{Resource: "run", ID: r.ID}
	}
	status, err := ParseRunStatus(rows[0].Status)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", r.ID, err)
	}

	r.client.metrics.ObserveRefresh("status")
	return r.state.setStatus(status), nil
}

// TaskDetails returns the run's tasks ordered by submission time. Tasks not
// yet submitted come last.
func (r *Run) TaskDetails(ctx context.Context) ([]TaskDetail, error) {
	if details, ok := r.state.finalTaskDetails(); ok {
		r.client.metrics.ObserveCacheHit("task_details")
		return details, nil
	}

	status, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		TaskDetails map[string]RunDetails `json:"task_details"`
	}
	if err := r.client.listRuns(ctx, []string{r.ID}, []string{"task_details"}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &errors.NotFoundError{Resource: "run", ID: r.ID}
	}
	r.client.metrics.ObserveRefresh("task_details")

	details := sortTaskDetails(rows[0].TaskDetails)
	if status.Finished() {
		r.state.storeTaskDetails(details)
	}
	return details, nil
}

func sortTaskDetails(tasks map[string]RunDetails) []TaskDetail {
	out := make([]TaskDetail, 0, len(tasks))
	for name, d := range tasks {
		out = append(out, TaskDetail{Name: name, RunDetails: d})
	}
	slices.SortFunc(out, func(a, b TaskDetail) int {
		at, bt := a.SubmissionTime, b.SubmissionTime
		switch {
		case at == nil && bt != nil:
			return 1
		case at != nil && bt == nil:
			return -1
		case at != nil && bt != nil:
			if c := at.Compare(*bt); c != 0 {
				return c
			}
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// TaskStatus maps each task name to its status.
func (r *Run) TaskStatus(ctx context.Context) (map[string]RunStatus, error) {
	details, err := r.TaskDetails(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]RunStatus, len(details))
	for _, d := range details {
		out[d.Name] = d.Status
	}
	return out, nil
}

// Output returns the converted run output. It returns nil without error
// unless the run is done; failed and cancelled runs have no output.
func (r *Run) Output(ctx context.Context) (map[string]any, error) {
	if out, ok := r.state.cachedOutput(); ok {
		r.client.metrics.ObserveCacheHit("output")
		return out, nil
	}

	rec, err := r.client.DescribeRun(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.client.metrics.ObserveRefresh("output")

	if r.state.setStatus(rec.Details.Status) != StatusDone {
		return nil, nil
	}

	out, err := convertOutput(r.client.converter, rec.Output)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return r.state.storeOutput(out), nil
}

// Reason explains the current status. For failed runs it is the failure
// reason reported by the service.
func (r *Run) Reason(ctx context.Context) (string, error) {
	status, err := r.Status(ctx)
	if err != nil {
		return "", err
	}

	switch status {
	case StatusDone:
		return "Workflow run was successful.", nil
	case StatusCancelled, StatusCancelling:
		return fmt.Sprintf("Workflow run %s.", status), nil
	case StatusRunning, StatusPending, StatusQueued:
		return fmt.Sprintf("Workflow run is %s. Check Run.Monitor() for task updates.", status), nil
	}

	var rows []struct {
		Reason string `json:"details.reason"`
	}
	if err := r.client.listRuns(ctx, []string{r.ID}, []string{"details.reason"}, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", &errors.NotFoundError{Resource: "run", ID: r.ID}
	}
	return unescapeDoubled(rows[0].Reason), nil
}

// unescapeDoubled collapses escape sequences that were escaped twice on the
// way from the worker, e.g. a literal `\n` becomes a newline. Unknown
// sequences are kept as written.
func unescapeDoubled(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		if s[0] != '\\' {
			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]
			continue
		}
		if len(s) > 1 && (s[1] == '\'' || s[1] == '"') {
			b.WriteByte(s[1])
			s = s[2:]
			continue
		}
		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			b.WriteByte('\\')
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = tail
	}
	return b.String()
}

// Cancel requests cancellation and refreshes the status.
func (r *Run) Cancel(ctx context.Context) (*Run, error) {
	if _, err := r.client.CancelRun(ctx, r.ID); err != nil {
		return nil, err
	}
	if _, err := r.Status(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Resubmit starts a new run with the same definition. The receiver keeps
// pointing at the original run.
func (r *Run) Resubmit(ctx context.Context) (*Run, error) {
	return r.client.ResubmitRun(ctx, r.ID)
}

// String renders the handle with its cached status. It makes no network
// calls.
func (r *Run) String() string {
	return fmt.Sprintf("Run(id=%q, name=%q, workflow=%q, status=%q)",
		r.ID, r.Name, WorkflowLabel(r.Workflow), r.state.currentStatus())
}

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	var nf *errors.NotFoundError
	return errors.As(err, &nf) || errors.IsHTTPStatus(err, http.StatusNotFound)
}
