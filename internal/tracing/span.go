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
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for client spans.
const TracerName = "github.com/tombee/farmvibes/pkg/client"

// Tracer returns the tracer from the globally registered provider. Without
// an SDK installed this is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartRequestSpan starts a client span for one service call.
func StartRequestSpan(ctx context.Context, method, endpoint string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "farmvibes "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("farmvibes.endpoint", endpoint),
		),
	)
}

// EndRequestSpan records the outcome of a service call and ends the span.
// statusCode is zero when no response was received.
func EndRequestSpan(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case statusCode >= http.StatusBadRequest:
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
