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
	"log/slog"
	"sync"
)

// Warning is a non-fatal condition reported by the client. Warnings never
// fail the call that raised them.
type Warning interface {
	// Kind is a stable label, used for metrics.
	Kind() string
	// Message is the human-readable text.
	Message() string
}

// LowDiskSpaceWarning is raised when the service cache has less free space
// than DiskFreeThreshold.
type LowDiskSpaceWarning struct {
	FreeBytes float64
}

func (w LowDiskSpaceWarning) Kind() string { return "low_disk_space" }

func (w LowDiskSpaceWarning) Message() string {
	return fmt.Sprintf("The FarmVibes.AI cache is running low on disk space and only has %.2f GiB left. "+
		"Please consider clearing the cache to free up space and to avoid potential failures.",
		w.FreeBytes/(1<<30))
}

// TimeZoneWarning is raised when the service time zone cannot be read from
// its Date header and the local zone is used instead.
type TimeZoneWarning struct {
	Reason string
}

func (w TimeZoneWarning) Kind() string { return "time_zone" }

func (w TimeZoneWarning) Message() string {
	return fmt.Sprintf("Could not determine the time zone of the FarmVibes.AI REST-API. %s "+
		"Using the client time zone instead.", w.Reason)
}

// DiskCheckWarning is raised by Monitor when the periodic disk space check
// itself fails.
type DiskCheckWarning struct {
	Err error
}

func (w DiskCheckWarning) Kind() string { return "disk_check_failed" }

func (w DiskCheckWarning) Message() string {
	return fmt.Sprintf("Unable to check the FarmVibes.AI cache disk space: %v", w.Err)
}

// WarningHandler receives every warning raised by a Client.
type WarningHandler func(ctx context.Context, w Warning)

// LogWarnings returns a handler that writes warnings to logger.
func LogWarnings(logger *slog.Logger) WarningHandler {
	return func(ctx context.Context, w Warning) {
		logger.WarnContext(ctx, w.Message(), "kind", w.Kind())
	}
}

// WarningRecorder collects warnings raised under a context.
type WarningRecorder struct {
	mu       sync.Mutex
	warnings []Warning
}

type recorderKey struct{}

// WithWarningRecorder returns a context that records every warning raised by
// client calls made with it. Recorders nest: a warning reaches every
// recorder in the chain.
func WithWarningRecorder(ctx context.Context) (context.Context, *WarningRecorder) {
	rec := &WarningRecorder{}
	parents, _ := ctx.Value(recorderKey{}).([]*WarningRecorder)
	chain := append(append([]*WarningRecorder(nil), parents...), rec)
	return context.WithValue(ctx, recorderKey{}, chain), rec
}

// Warnings returns a copy of the warnings recorded so far, oldest first.
func (r *WarningRecorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

func (r *WarningRecorder) add(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

func recordWarning(ctx context.Context, w Warning) {
	chain, _ := ctx.Value(recorderKey{}).([]*WarningRecorder)
	for _, rec := range chain {
		rec.add(w)
	}
}
