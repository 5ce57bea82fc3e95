package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vibeerrors "github.com/tombee/farmvibes/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitExecutionFailed},
		{"exit error", NewRunFailedError("run failed", nil), ExitRunFailed},
		{"validation", &vibeerrors.ValidationError{Field: "geometry", Message: "required"}, ExitInvalidInput},
		{"wrapped timeout", fmt.Errorf("wait: %w", &vibeerrors.TimeoutError{Operation: "x", Duration: time.Second}), ExitTimeout},
		{"config", &vibeerrors.ConfigError{Key: "remote_service_url", Reason: "missing"}, ExitConfigError},
		{"http", &vibeerrors.HTTPError{StatusCode: 404, URL: "u"}, ExitServiceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestWriteExitErrorPrintsSuggestion(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{})()

	var buf bytes.Buffer
	err := fmt.Errorf("resolve: %w", &vibeerrors.ConfigError{Key: "/tmp/remote_service_url", Reason: "remote service URL not configured"})
	code := writeExitError(&buf, err)

	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, buf.String(), "remote service URL not configured")
	assert.Contains(t, buf.String(), "Suggestion: Create /tmp/remote_service_url")
}

func TestWriteExitErrorWithoutSuggestion(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{})()

	var buf bytes.Buffer
	writeExitError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
	assert.NotContains(t, buf.String(), "Suggestion")
}

func TestWriteExitErrorJSON(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JSON: true})()

	var buf bytes.Buffer
	code := writeExitError(&buf, NewInvalidInputError("bad flag", nil))
	assert.Equal(t, ExitInvalidInput, code)

	var out JSONError
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.Success)
	assert.Equal(t, ExitInvalidInput, out.Code)
	assert.Equal(t, "bad flag", out.Message)
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewExecutionError("failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: cause", err.Error())
}

func TestWriteExitErrorJSONType(t *testing.T) {
	defer SetFlagsForTest(GlobalFlags{JSON: true})()

	var buf bytes.Buffer
	err := fmt.Errorf("waiting: %w", &vibeerrors.TimeoutError{Operation: "workflow run completion", Duration: time.Second})
	code := writeExitError(&buf, err)
	assert.Equal(t, ExitTimeout, code)

	var out JSONError
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "timeout", out.Type)
}
