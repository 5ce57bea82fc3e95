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
	"time"

	"github.com/tombee/farmvibes/internal/log"
	"github.com/tombee/farmvibes/pkg/errors"
)

// BlockUntilComplete polls the run status every PollInterval until the run
// is done or failed. A timeout of zero waits forever; otherwise a
// *errors.TimeoutError is returned once it is exceeded and the run is left
// as is on the service.
//
// A cancelled run does not end the wait: only done and failed do. Use
// Monitor, or bound the wait with a timeout or ctx, when cancellation is
// possible.
func (r *Run) BlockUntilComplete(ctx context.Context, timeout time.Duration) (*Run, error) {
	start := time.Now()
	logger := log.WithRunContext(r.client.logger, r.ID, WorkflowLabel(r.Workflow))

	for {
		status, err := r.Status(ctx)
		if err != nil {
			return nil, err
		}
		if status == StatusDone || status == StatusFailed {
			logger.DebugContext(ctx, "run completed", log.StatusKey, status, log.DurationKey, time.Since(start).Milliseconds())
			return r, nil
		}

		wait := r.client.pollInterval
		if timeout > 0 {
			// Wake up at the deadline rather than a full interval past it.
			if remaining := timeout - time.Since(start); remaining < wait {
				wait = max(remaining, 0)
			}
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}

		if timeout > 0 && time.Since(start) >= timeout {
			return nil, &errors.TimeoutError{Operation: "workflow run completion", Duration: timeout}
		}
	}
}

// MonitorOptions configures Run.Monitor.
type MonitorOptions struct {
	// RefreshInterval is the time between frames. Default: 1s.
	RefreshInterval time.Duration

	// WarningRefreshInterval is the time between disk space checks.
	// Default: 5m.
	WarningRefreshInterval time.Duration

	// Timeout stops monitoring once exceeded. Zero means no limit.
	Timeout time.Duration

	// Presenter receives every frame. Default: frames are logged.
	Presenter Presenter
}

func (o MonitorOptions) withDefaults(r *Run) MonitorOptions {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = time.Second
	}
	if o.WarningRefreshInterval <= 0 {
		o.WarningRefreshInterval = 5 * time.Minute
	}
	if o.Presenter == nil {
		logger := log.WithRunContext(r.client.logger, r.ID, WorkflowLabel(r.Workflow))
		o.Presenter = PresenterFunc(func(f MonitorFrame) {
			logger.Info("run status", log.StatusKey, f.Status, "tasks", len(f.Tasks), "warnings", len(f.Warnings))
		})
	}
	return o
}

// MonitorFrame is one snapshot of a monitored run.
type MonitorFrame struct {
	Workflow string
	Name     string
	ID       string
	Status   RunStatus
	Tasks    []TaskDetail

	// Warnings holds every warning raised since Monitor started.
	Warnings []Warning

	// TimeZone is the service time zone, for rendering timestamps.
	TimeZone *time.Location

	// Final is set on the last frame.
	Final bool
}

// Presenter displays monitor frames.
type Presenter interface {
	Present(frame MonitorFrame)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(frame MonitorFrame)

// Present implements Presenter.
func (f PresenterFunc) Present(frame MonitorFrame) {
	f(frame)
}

// Monitor presents the run status and tasks every RefreshInterval until the
// run is finished or Timeout elapses, re-checking the service disk space
// every WarningRefreshInterval. One last frame is always presented on
// exit. Reaching the timeout is not an error.
func (r *Run) Monitor(ctx context.Context, opts MonitorOptions) error {
	opts = opts.withDefaults(r)
	ctx, recorder := WithWarningRecorder(ctx)

	tz, err := r.client.APITimeZone(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	lastWarningCheck := start

	for {
		if err := r.present(ctx, opts.Presenter, tz, recorder, false); err != nil {
			return err
		}

		if err := sleep(ctx, opts.RefreshInterval); err != nil {
			return err
		}
		now := time.Now()

		if now.Sub(lastWarningCheck) > opts.WarningRefreshInterval {
			if err := r.client.VerifyDiskSpace(ctx); err != nil {
				r.client.warn(ctx, DiskCheckWarning{Err: err})
			}
			lastWarningCheck = now
		}

		status, err := r.Status(ctx)
		if err != nil {
			return err
		}
		timedOut := opts.Timeout > 0 && now.Sub(start) > opts.Timeout
		if status.Finished() || timedOut {
			break
		}
	}

	return r.present(ctx, opts.Presenter, tz, recorder, true)
}

func (r *Run) present(ctx context.Context, p Presenter, tz *time.Location, rec *WarningRecorder, final bool) error {
	status, err := r.Status(ctx)
	if err != nil {
		return err
	}
	tasks, err := r.TaskDetails(ctx)
	if err != nil {
		return err
	}

	p.Present(MonitorFrame{
		Workflow: WorkflowLabel(r.Workflow),
		Name:     r.Name,
		ID:       r.ID,
		Status:   status,
		Tasks:    tasks,
		Warnings: rec.Warnings(),
		TimeZone: tz,
		Final:    final,
	})
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
