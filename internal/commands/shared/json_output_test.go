package shared

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestWriteJSON(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JSON: true})()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(context.Background(), &buf, item{ID: "1", Status: "done"}))
	assert.JSONEq(t, `{"id":"1","status":"done"}`, buf.String())
	assert.Contains(t, buf.String(), "\n  \"id\"")
}

func TestWriteJSONWithFilter(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JQ: `.[] | select(.status == "done") | .id`})()
	require.True(t, GetJSON())

	var buf bytes.Buffer
	items := []item{{"1", "done"}, {"2", "failed"}, {"3", "done"}}
	require.NoError(t, WriteJSON(context.Background(), &buf, items))
	assert.Equal(t, "\"1\"\n\"3\"\n", buf.String())
}

func TestWriteJSONFilterError(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JQ: `.id + 1`})()

	var buf bytes.Buffer
	err := WriteJSON(context.Background(), &buf, item{ID: "x"})
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCode(err))
}

func TestValidateJQ(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JQ: ".["})()
	assert.Error(t, ValidateJQ())

	SetFlagsForTest(GlobalFlags{JQ: ".id"})
	assert.NoError(t, ValidateJQ())
}
