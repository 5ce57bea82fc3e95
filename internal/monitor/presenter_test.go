package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/pkg/client"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleFrame() client.MonitorFrame {
	return client.MonitorFrame{
		Workflow: "helloworld",
		Name:     "field A",
		ID:       "00000000-0000-0000-0000-000000000001",
		Status:   client.StatusRunning,
		Tasks: []client.TaskDetail{
			{Name: "hello", RunDetails: client.RunDetails{
				Status:    client.StatusDone,
				StartTime: at("2024-03-01T10:00:02Z"),
				EndTime:   at("2024-03-01T10:00:05Z"),
			}},
			{Name: "world", RunDetails: client.RunDetails{
				Status:    client.StatusRunning,
				StartTime: at("2024-03-01T10:00:05Z"),
			}},
			{Name: "later", RunDetails: client.RunDetails{Status: client.StatusPending}},
		},
		TimeZone: time.UTC,
	}
}

func TestRender(t *testing.T) {
	now := *at("2024-03-01T10:01:05Z")
	out := Render(sampleFrame(), now)

	assert.Contains(t, out, "helloworld")
	assert.Contains(t, out, "field A")
	assert.Contains(t, out, "Running")
	assert.Contains(t, out, "Task Name")
	assert.Contains(t, out, "2024/03/01 10:00:02")
	assert.Contains(t, out, "00:00:03")
	// run spans the first start to now while a task is open
	assert.Contains(t, out, "00:01:03")

	var later string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "later") {
			later = line
		}
	}
	require.NotEmpty(t, later)
	assert.Contains(t, later, "N/A")
}

func TestRenderUsesTimeZone(t *testing.T) {
	frame := sampleFrame()
	frame.TimeZone = time.FixedZone("UTC+2", 2*60*60)

	out := Render(frame, *at("2024-03-01T10:01:05Z"))
	assert.Contains(t, out, "2024/03/01 12:00:02")
}

func TestRenderWarnings(t *testing.T) {
	frame := sampleFrame()
	frame.Warnings = []client.Warning{client.LowDiskSpaceWarning{FreeBytes: 10 << 30}}

	out := Render(frame, *at("2024-03-01T10:01:05Z"))
	assert.Contains(t, out, symbolWarn)
	assert.Contains(t, out, frame.Warnings[0].Message())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "N/A", formatDuration(-1))
	assert.Equal(t, "00:00:00", formatDuration(0))
	assert.Equal(t, "01:02:03", formatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "26:00:00", formatDuration(26*time.Hour))
}

func TestRunDurationFinished(t *testing.T) {
	tasks := []client.TaskDetail{
		{Name: "a", RunDetails: client.RunDetails{StartTime: at("2024-03-01T10:00:00Z"), EndTime: at("2024-03-01T10:00:10Z")}},
		{Name: "b", RunDetails: client.RunDetails{StartTime: at("2024-03-01T10:00:05Z"), EndTime: at("2024-03-01T10:00:30Z")}},
	}
	assert.Equal(t, 30*time.Second, runDuration(tasks, time.Now()))
	assert.Equal(t, time.Duration(-1), runDuration(nil, time.Now()))
}

func TestPresenterStaticSkipsUnchangedFrames(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	require.False(t, p.interactive)
	p.now = func() time.Time { return *at("2024-03-01T10:01:05Z") }

	frame := sampleFrame()
	p.Present(frame)
	first := buf.Len()
	require.Greater(t, first, 0)

	p.Present(frame)
	assert.Equal(t, first, buf.Len(), "unchanged frame should not be printed again")

	frame.Status = client.StatusDone
	p.Present(frame)
	assert.Greater(t, buf.Len(), first)

	size := buf.Len()
	frame.Final = true
	p.Present(frame)
	assert.Greater(t, buf.Len(), size, "final frame is always printed")
}

func TestPresenterInteractiveRedraws(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.interactive = true
	p.now = func() time.Time { return *at("2024-03-01T10:01:05Z") }

	p.Present(sampleFrame())
	assert.NotContains(t, buf.String(), "\x1b[J")
	p.Present(sampleFrame())
	assert.Contains(t, buf.String(), "A\x1b[J")
}
