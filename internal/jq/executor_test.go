package jq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Status string            `json:"status"`
	Tags   map[string]string `json:"tags,omitempty"`
}

func TestExecuteEmptyExpressionReturnsInput(t *testing.T) {
	e := NewExecutor(0, 0)
	out, err := e.Execute(context.Background(), "", record{ID: "1", Name: "a"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"id": "1", "name": "a", "status": ""}, out[0])
}

func TestExecuteStructsAreNormalized(t *testing.T) {
	runs := []record{
		{ID: "1", Name: "a", Status: "done"},
		{ID: "2", Name: "b", Status: "failed"},
		{ID: "3", Name: "c", Status: "done"},
	}
	e := NewExecutor(0, 0)

	out, err := e.Execute(context.Background(), `.[] | select(.status == "done") | .id`, runs)
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "3"}, out)

	out, err = e.Execute(context.Background(), `length`, runs)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)
}

func TestExecuteNoResults(t *testing.T) {
	e := NewExecutor(0, 0)
	out, err := e.Execute(context.Background(), `empty`, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecuteRuntimeError(t *testing.T) {
	e := NewExecutor(0, 0)
	_, err := e.Execute(context.Background(), `.id + 1`, record{ID: "x"})
	assert.Error(t, err)
}

func TestExecuteInputTooLarge(t *testing.T) {
	e := NewExecutor(0, 8)
	_, err := e.Execute(context.Background(), ".", record{ID: "0123456789"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestValidate(t *testing.T) {
	e := NewExecutor(0, 0)
	assert.NoError(t, e.Validate(""))
	assert.NoError(t, e.Validate(".[] | .id"))
	assert.Error(t, e.Validate(".[] |"))
	assert.Error(t, e.Validate("undefined_fn(1)"))
}
