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

package monitor

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tombee/farmvibes/pkg/client"
)

const (
	timeLayout = "2006/01/02 15:04:05"
	noTime     = "N/A"
)

var titleCaser = cases.Title(language.English)

// Render draws one monitor frame as text. now is the wall clock used for the
// duration of unfinished runs and tasks.
func Render(frame client.MonitorFrame, now time.Time) string {
	tz := frame.TimeZone
	if tz == nil {
		tz = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleTitle.Render("FarmVibes.AI"), styleTitle.Render(frame.Workflow))
	fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("Run name:    "), frame.Name)
	fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("Run id:      "), frame.ID)
	fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("Run status:  "), statusStyle(frame.Status).Render(titleCaser.String(string(frame.Status))))
	fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("Run duration:"), formatDuration(runDuration(frame.Tasks, now)))

	if len(frame.Tasks) > 0 {
		b.WriteString("\n")
		renderTasks(&b, frame.Tasks, tz, now)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s (%s)\n", styleLabel.Render("Last update:"), now.In(tz).Format(timeLayout), tz)

	for _, w := range frame.Warnings {
		fmt.Fprintf(&b, "%s %s\n", styleWarn.Render(symbolWarn), w.Message())
	}
	return b.String()
}

func renderTasks(b *strings.Builder, tasks []client.TaskDetail, tz *time.Location, now time.Time) {
	nameWidth := len("Task Name")
	for _, t := range tasks {
		nameWidth = max(nameWidth, len(t.Name))
	}
	statusWidth := len("cancelling")
	timeWidth := len(timeLayout)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		nameWidth, "Task Name", statusWidth, "Status", timeWidth, "Start Time", timeWidth, "End Time", "Duration")
	b.WriteString(styleHeader.Render(header))
	b.WriteString("\n")

	for _, t := range tasks {
		status := fmt.Sprintf("%-*s", statusWidth, titleCaser.String(string(t.Status)))
		fmt.Fprintf(b, "%-*s  %s  %-*s  %-*s  %s\n",
			nameWidth, t.Name,
			statusStyle(t.Status).Render(status),
			timeWidth, formatTime(t.StartTime, tz),
			timeWidth, formatTime(t.EndTime, tz),
			formatDuration(taskDuration(t.RunDetails, now)),
		)
	}
}

func formatTime(t *time.Time, tz *time.Location) string {
	if t == nil {
		return noTime
	}
	return t.In(tz).Format(timeLayout)
}

// taskDuration is end-start, or now-start while the task runs. Tasks that
// have not started have no duration.
func taskDuration(d client.RunDetails, now time.Time) time.Duration {
	if d.StartTime == nil {
		return -1
	}
	end := now
	if d.EndTime != nil {
		end = *d.EndTime
	}
	return end.Sub(*d.StartTime)
}

// runDuration spans the earliest task start to the latest task end, or now
// while any started task is still open.
func runDuration(tasks []client.TaskDetail, now time.Time) time.Duration {
	var first, last *time.Time
	open := false
	for _, t := range tasks {
		if t.StartTime != nil && (first == nil || t.StartTime.Before(*first)) {
			first = t.StartTime
		}
		if t.StartTime != nil && t.EndTime == nil {
			open = true
		}
		if t.EndTime != nil && (last == nil || t.EndTime.After(*last)) {
			last = t.EndTime
		}
	}
	if first == nil {
		return -1
	}
	if open || last == nil {
		return now.Sub(*first)
	}
	return last.Sub(*first)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return noTime
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
