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

package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID()
	assert.True(t, id.IsValid(), "generated id %q should be a UUID", id)
	assert.NotEqual(t, id, NewCorrelationID())
}

func TestCorrelationID_IsValid(t *testing.T) {
	assert.True(t, CorrelationID("123e4567-e89b-12d3-a456-426614174000").IsValid())
	assert.False(t, CorrelationID("not-a-uuid").IsValid())
	assert.False(t, CorrelationID("").IsValid())
}

func TestContextRoundTrip(t *testing.T) {
	id := NewCorrelationID()
	ctx := ToContext(context.Background(), id)

	assert.Equal(t, id, FromContext(ctx))
	assert.Equal(t, id, FromContextOrEmpty(ctx))
	assert.Empty(t, FromContextOrEmpty(context.Background()))
	assert.True(t, FromContext(context.Background()).IsValid())
}

func TestInjectIntoRequest(t *testing.T) {
	id := NewCorrelationID()
	req, err := http.NewRequestWithContext(ToContext(context.Background(), id), http.MethodGet, "http://localhost/v0/runs", nil)
	require.NoError(t, err)

	got := InjectIntoRequest(req)
	assert.Equal(t, id, got)
	assert.Equal(t, id.String(), req.Header.Get(HeaderCorrelationID))

	req2, err := http.NewRequest(http.MethodGet, "http://localhost/v0/runs", nil)
	require.NoError(t, err)
	generated := InjectIntoRequest(req2)
	assert.True(t, generated.IsValid())
}

func TestRequestSpanWithNoopProvider(t *testing.T) {
	ctx, span := StartRequestSpan(context.Background(), http.MethodGet, "v0/runs")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	assert.NotPanics(t, func() {
		EndRequestSpan(span, http.StatusNotFound, nil)
	})

	_, span = StartRequestSpan(context.Background(), http.MethodPost, "v0/runs")
	assert.NotPanics(t, func() {
		EndRequestSpan(span, 0, errors.New("connection refused"))
	})
}
