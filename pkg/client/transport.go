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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tombee/farmvibes/internal/log"
	"github.com/tombee/farmvibes/internal/tracing"
	"github.com/tombee/farmvibes/pkg/errors"
)

// Transport issues requests against the service base URL. All calls share
// one *http.Client and therefore one connection pool.
type Transport struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTransport creates a Transport for baseURL.
func NewTransport(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Transport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, &errors.ValidationError{Field: "base_url", Message: err.Error()}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &errors.ValidationError{
			Field:      "base_url",
			Message:    fmt.Sprintf("%q is not an absolute URL", baseURL),
			Suggestion: "use a URL such as http://192.168.49.2:30000/",
		}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{baseURL: u, httpClient: httpClient, logger: logger}, nil
}

// BaseURL returns the service base URL.
func (t *Transport) BaseURL() string {
	return t.baseURL.String()
}

// Request sends one request and returns the parsed body: the decoded JSON
// value when the body is JSON, the raw text otherwise. Status codes >= 400
// yield *errors.HTTPError.
func (t *Transport) Request(ctx context.Context, method, endpoint string, body []byte) (any, error) {
	_, parsed, err := t.send(ctx, method, endpoint, body)
	return parsed, err
}

// RequestJSON sends one request and decodes a successful JSON body into out.
func (t *Transport) RequestJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	raw, _, err := t.send(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, endpoint, err)
	}
	return nil
}

// Header performs a GET on endpoint and returns the response headers
// without checking the status code.
func (t *Transport) Header(ctx context.Context, endpoint string) (http.Header, error) {
	req, err := t.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Header, nil
}

func (t *Transport) newRequest(ctx context.Context, method, endpoint string, body []byte) (*http.Request, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, &errors.ValidationError{Field: "endpoint", Message: err.Error()}
	}
	target := t.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (t *Transport) send(ctx context.Context, method, endpoint string, body []byte) ([]byte, any, error) {
	ctx, span := tracing.StartRequestSpan(ctx, method, endpoint)
	start := time.Now()

	req, err := t.newRequest(ctx, method, endpoint, body)
	if err != nil {
		tracing.EndRequestSpan(span, 0, err)
		return nil, nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", method, endpoint, err)
		tracing.EndRequestSpan(span, 0, err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("reading response of %s %s: %w", method, endpoint, err)
		tracing.EndRequestSpan(span, resp.StatusCode, err)
		return nil, nil, err
	}
	parsed := parseBody(raw)

	log.Trace(ctx, t.logger, "service response",
		slog.String("method", method),
		slog.String(log.EndpointKey, endpoint),
		slog.Int("status_code", resp.StatusCode),
		slog.Int("bytes", len(raw)),
		slog.Int64(log.DurationKey, time.Since(start).Milliseconds()),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		herr := &errors.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     reasonPhrase(resp),
			URL:        req.URL.String(),
			Message:    errorMessage(parsed),
		}
		tracing.EndRequestSpan(span, resp.StatusCode, herr)
		return raw, parsed, herr
	}

	tracing.EndRequestSpan(span, resp.StatusCode, nil)
	return raw, parsed, nil
}

// parseBody decodes JSON, falling back to the raw text.
func parseBody(raw []byte) any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}

// errorMessage extracts the explanation from an error body: the "message"
// field of an object (empty when absent), or the body itself.
func errorMessage(parsed any) string {
	switch v := parsed.(type) {
	case map[string]any:
		msg, ok := v["message"]
		if !ok || msg == nil {
			return ""
		}
		if s, ok := msg.(string); ok {
			return s
		}
		return fmt.Sprint(msg)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}
