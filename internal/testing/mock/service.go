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

// Package mock provides an in-memory FarmVibes.AI REST service for tests.
package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/tombee/farmvibes/pkg/client"
)

// Run is a run known to the service.
type Run struct {
	ID         string
	Name       string
	Workflow   any
	Parameters map[string]any

	// Statuses are returned in order by status reads; the last one sticks.
	Statuses []string

	Tasks  map[string]map[string]any
	Reason string
	Output map[string]any

	idx int
}

func (r *Run) nextStatus() string {
	if len(r.Statuses) == 0 {
		return "pending"
	}
	s := r.Statuses[min(r.idx, len(r.Statuses)-1)]
	r.idx++
	return s
}

func (r *Run) currentStatus() string {
	if len(r.Statuses) == 0 {
		return "pending"
	}
	return r.Statuses[min(max(r.idx-1, 0), len(r.Statuses)-1)]
}

// Service is a fake service backed by httptest.Server.
type Service struct {
	mu  sync.Mutex
	srv *httptest.Server

	runs      map[string]*Run
	order     []string
	workflows map[string]map[string]any
	diskFree  float64
	omitDate  bool
	nextID    int

	submissions []map[string]any
	calls       map[string]int
}

// NewService starts a service that is closed when the test ends.
func NewService(t testing.TB) *Service {
	t.Helper()
	s := &Service{
		runs:      map[string]*Run{},
		workflows: map[string]map[string]any{},
		diskFree:  200 << 30,
		calls:     map[string]int{},
	}
	s.srv = httptest.NewServer(s.handler())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the service base URL, with a trailing slash.
func (s *Service) URL() string {
	return s.srv.URL + "/"
}

// AddRun registers r.
func (s *Service) AddRun(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addRun(r)
}

func (s *Service) addRun(r *Run) {
	if _, ok := s.runs[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.runs[r.ID] = r
}

// AddWorkflow registers a workflow definition under name.
func (s *Service) AddWorkflow(name string, definition map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[name] = definition
}

// SetDiskFree sets the free cache space reported by system metrics.
func (s *Service) SetDiskFree(bytes float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diskFree = bytes
}

// OmitDate drops the Date header from the root endpoint.
func (s *Service) OmitDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitDate = true
}

// Submissions returns the run descriptors received so far.
func (s *Service) Submissions() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.submissions...)
}

// Calls counts requests by kind: "list" (any v0/runs query), "status",
// "task_details", "reason", "describe", "cancel", "resubmit", "submit",
// "metrics", "workflows".
func (s *Service) Calls(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": what + " not found"})
}

func (s *Service) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		omit := s.omitDate
		s.mu.Unlock()
		if omit {
			w.Header()["Date"] = nil
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "FarmVibes.AI REST API"})
	})

	mux.HandleFunc("GET /v0/system-metrics", s.systemMetrics)
	mux.HandleFunc("GET /v0/workflows", s.listWorkflows)
	mux.HandleFunc("GET /v0/workflows/{name...}", s.getWorkflow)
	mux.HandleFunc("GET /v0/runs", s.listRuns)
	mux.HandleFunc("GET /v0/runs/{id}", s.describeRun)
	mux.HandleFunc("POST /v0/runs", s.submit)
	mux.HandleFunc("POST /v0/runs/{id}/cancel", s.cancel)
	mux.HandleFunc("POST /v0/runs/{id}/resubmit", s.resubmit)
	return mux
}

func (s *Service) systemMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["metrics"]++
	writeJSON(w, http.StatusOK, map[string]any{
		"disk_free":    s.diskFree,
		"cpu_usage":    12.5,
		"free_memory":  8 << 30,
		"load_avg":     []float64{0.5, 0.4, 0.3},
		"total_memory": 16 << 30,
	})
}

func (s *Service) listWorkflows(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["workflows"]++
	names := make([]string, 0, len(s.workflows))
	for name := range s.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

func (s *Service) getWorkflow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := r.PathValue("name")
	def, ok := s.workflows[name]
	if !ok {
		notFound(w, "Workflow "+name)
		return
	}

	if r.URL.Query().Get("return_format") == "description" {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":       name,
			"inputs":     map[string]any{"user_input": "List[DataVibe]"},
			"outputs":    map[string]any{"raster": "List[Raster]"},
			"parameters": def["parameters"],
			"description": map[string]any{
				"short_description": "Fake workflow " + name,
				"long_description":  "",
				"inputs":            map[string]string{"user_input": "Region and time range."},
				"outputs":           map[string]string{"raster": "Output raster."},
				"parameters":        map[string]string{},
				"task_descriptions": map[string]string{},
			},
		})
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// listRuns answers v0/runs?ids=..&fields=... Without fields it returns the
// summary fields, advancing the status of each run returned.
func (s *Service) listRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["list"]++

	q := r.URL.Query()
	ids := q["ids"]
	if len(ids) == 0 {
		ids = s.order
	}
	fields := q["fields"]
	if len(fields) == 0 {
		fields = client.SummaryDefaultFields
	}

	rows := []map[string]any{}
	for _, id := range ids {
		run, ok := s.runs[id]
		if !ok {
			continue
		}
		row := map[string]any{}
		for _, f := range fields {
			switch f {
			case "id":
				row[f] = run.ID
			case "name":
				row[f] = run.Name
			case "workflow":
				row[f] = run.Workflow
			case "parameters":
				row[f] = run.Parameters
			case "details.status":
				s.calls["status"]++
				row[f] = run.nextStatus()
			case "task_details":
				s.calls["task_details"]++
				row[f] = run.Tasks
			case "details.reason":
				s.calls["reason"]++
				row[f] = run.Reason
			}
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Service) describeRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["describe"]++

	run, ok := s.runs[r.PathValue("id")]
	if !ok {
		notFound(w, "Run")
		return
	}
	status := run.currentStatus()
	output := ""
	if status == "done" && run.Output != nil {
		raw, _ := json.Marshal(run.Output)
		output = client.Encode(string(raw))
	}
	details := map[string]any{"status": status, "submission_time": "2024-03-01T10:00:00"}
	if status == "failed" {
		details["reason"] = run.Reason
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           run.ID,
		"name":         run.Name,
		"workflow":     run.Workflow,
		"parameters":   run.Parameters,
		"details":      details,
		"task_details": run.Tasks,
		"output":       output,
	})
}

func (s *Service) newID() string {
	s.nextID++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.nextID)
}

func (s *Service) submit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["submit"]++

	body, _ := io.ReadAll(r.Body)
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.submissions = append(s.submissions, payload)

	name, _ := payload["name"].(string)
	params, _ := payload["parameters"].(map[string]any)
	run := &Run{
		ID:         s.newID(),
		Name:       name,
		Workflow:   payload["workflow"],
		Parameters: params,
		Statuses:   []string{"pending", "running", "done"},
		Output:     map[string]any{},
	}
	s.addRun(run)
	writeJSON(w, http.StatusCreated, map[string]string{"id": run.ID, "location": "/v0/runs/" + run.ID})
}

func (s *Service) cancel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["cancel"]++

	run, ok := s.runs[r.PathValue("id")]
	if !ok {
		notFound(w, "Run")
		return
	}
	run.Statuses = []string{"cancelling", "cancelled"}
	run.idx = 0
	writeJSON(w, http.StatusOK, map[string]string{"id": run.ID, "message": "Requested cancellation of workflow run " + run.ID})
}

func (s *Service) resubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["resubmit"]++

	prev, ok := s.runs[r.PathValue("id")]
	if !ok {
		notFound(w, "Run")
		return
	}
	run := &Run{
		ID:         s.newID(),
		Name:       prev.Name,
		Workflow:   prev.Workflow,
		Parameters: prev.Parameters,
		Statuses:   []string{"pending", "done"},
		Output:     prev.Output,
	}
	s.addRun(run)
	writeJSON(w, http.StatusCreated, map[string]string{"id": run.ID})
}
