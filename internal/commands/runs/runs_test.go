package runs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
	"github.com/tombee/farmvibes/internal/testing/mock"
)

const (
	doneID    = "11111111-0000-4000-8000-000000000001"
	failedID  = "11111111-0000-4000-8000-000000000002"
	pendingID = "11111111-0000-4000-8000-000000000003"
)

func setup(t *testing.T, flags shared.GlobalFlags) *mock.Service {
	t.Helper()
	mock.Isolate(t)
	svc := mock.NewService(t)
	svc.AddRun(&mock.Run{
		ID: doneID, Name: "done run", Workflow: "helloworld",
		Statuses: []string{"done"},
		Output:   map[string]any{"raster": []any{map[string]any{"id": "r1"}}},
		Tasks: map[string]map[string]any{
			"world": {"status": "done", "submission_time": "2024-03-01T10:00:05", "start_time": "2024-03-01T10:00:06"},
			"hello": {"status": "done", "submission_time": "2024-03-01T10:00:01", "start_time": "2024-03-01T10:00:02"},
		},
	})
	svc.AddRun(&mock.Run{
		ID: failedID, Name: "failed run", Workflow: "helloworld",
		Statuses: []string{"failed"},
		Reason:   `RuntimeError: boom\nat line 3`,
	})
	svc.AddRun(&mock.Run{
		ID: pendingID, Name: "pending run", Workflow: map[string]any{"name": "inline"},
		Statuses: []string{"pending"},
	})

	flags.URL = svc.URL()
	t.Cleanup(shared.SetFlagsForTest(flags))
	return svc
}

func TestListJSON(t *testing.T) {
	setup(t, shared.GlobalFlags{JSON: true})

	stdout, _, err := mock.Execute(t, NewCommand(), "list")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, doneID, rows[0]["id"])
	assert.Equal(t, "done", rows[0]["details.status"])
	assert.Equal(t, "pending", rows[2]["details.status"])
}

func TestListTableWithFilter(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "list", "--id", pendingID, "--field", "id", "--field", "workflow")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "WORKFLOW")
	assert.Contains(t, lines[1], pendingID)
	assert.Contains(t, lines[1], "inline")
}

func TestListWithJQ(t *testing.T) {
	setup(t, shared.GlobalFlags{JQ: `[.[] | .name]`})

	stdout, _, err := mock.Execute(t, NewCommand(), "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["done run","failed run","pending run"]`, stdout)
}

func TestInvalidJQFailsBeforeRequests(t *testing.T) {
	svc := setup(t, shared.GlobalFlags{JQ: `.[`})

	_, _, err := mock.Execute(t, NewCommand(), "list")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCode(err))
	assert.Zero(t, svc.Calls("status"))
}

func TestShow(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "show", failedID)
	require.NoError(t, err)
	assert.Contains(t, stdout, failedID)
	assert.Contains(t, stdout, "failed run")
	assert.Contains(t, stdout, "helloworld")
	assert.Contains(t, stdout, "failed")
}

func TestShowUnknownRun(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	_, _, err := mock.Execute(t, NewCommand(), "show", "nope")
	require.Error(t, err)
	assert.Equal(t, shared.ExitServiceError, shared.ExitCode(err))
}

func TestStatus(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "status", pendingID)
	require.NoError(t, err)
	assert.Equal(t, "pending\n", stdout)
}

func TestStatusUnknownRun(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	_, _, err := mock.Execute(t, NewCommand(), "status", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTasksOrderedBySubmission(t *testing.T) {
	setup(t, shared.GlobalFlags{JSON: true})

	stdout, _, err := mock.Execute(t, NewCommand(), "tasks", doneID)
	require.NoError(t, err)

	var rows []taskRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "hello", rows[0].Name)
	assert.Equal(t, "world", rows[1].Name)
}

func TestOutput(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "output", doneID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raster":[{"id":"r1"}]}`, stdout)
}

func TestOutputUnfinishedRun(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "output", pendingID)
	require.Error(t, err)
	assert.Equal(t, shared.ExitRunFailed, shared.ExitCode(err))
	assert.Contains(t, err.Error(), "status: pending")
	assert.Empty(t, stdout)
}

func TestReason(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "reason", failedID)
	require.NoError(t, err)
	assert.Equal(t, "RuntimeError: boom\nat line 3\n", stdout)

	stdout, _, err = mock.Execute(t, NewCommand(), "reason", pendingID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Workflow run is pending.")
}

func TestCancel(t *testing.T) {
	svc := setup(t, shared.GlobalFlags{JSON: true})

	stdout, _, err := mock.Execute(t, NewCommand(), "cancel", pendingID)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Calls("cancel"))

	var summary shared.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "cancelled", string(summary.Status))
}

func TestResubmitWait(t *testing.T) {
	svc := setup(t, shared.GlobalFlags{JSON: true})

	stdout, _, err := mock.Execute(t, NewCommand(), "resubmit", doneID, "--wait")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Calls("resubmit"))

	var summary shared.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.NotEqual(t, doneID, summary.ID)
	assert.Equal(t, "done run", summary.Name)
	assert.Equal(t, "done", string(summary.Status))
}

func TestWaitSeveralRuns(t *testing.T) {
	setup(t, shared.GlobalFlags{JSON: true})

	stdout, _, err := mock.Execute(t, NewCommand(), "wait", doneID, failedID)
	require.Error(t, err)
	assert.Equal(t, shared.ExitRunFailed, shared.ExitCode(err))

	var summaries []shared.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, doneID, summaries[0].ID)
	assert.Equal(t, "done", string(summaries[0].Status))
	assert.Equal(t, failedID, summaries[1].ID)
	assert.Equal(t, "RuntimeError: boom\nat line 3", summaries[1].Reason)
}

func TestWaitTimeout(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	_, _, err := mock.Execute(t, NewCommand(), "wait", pendingID, "--timeout", "30ms")
	require.Error(t, err)
	assert.Equal(t, shared.ExitTimeout, shared.ExitCode(err))
}

func TestMonitor(t *testing.T) {
	setup(t, shared.GlobalFlags{})

	stdout, _, err := mock.Execute(t, NewCommand(), "monitor", doneID, "--refresh", "5ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "done run")
	assert.Contains(t, stdout, "Done")
	assert.Contains(t, stdout, "hello")
}
