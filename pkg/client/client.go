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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/farmvibes/internal/log"
	"github.com/tombee/farmvibes/pkg/errors"
	"github.com/tombee/farmvibes/pkg/httpclient"
	"github.com/tombee/farmvibes/pkg/metrics"
)

const (
	// DiskFreeThreshold is the free cache space below which a
	// LowDiskSpaceWarning is raised.
	DiskFreeThreshold = 50 << 30

	// DefaultPollInterval is the BlockUntilComplete polling period.
	DefaultPollInterval = 10 * time.Second
)

// Client talks to one FarmVibes.AI service.
type Client struct {
	transport *Transport

	httpClient *http.Client
	httpConfig httpclient.Config

	logger         *slog.Logger
	metrics        *metrics.Collector
	pollInterval   time.Duration
	converter      OutputConverter
	serializer     InputSerializer
	warningHandler WarningHandler
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		httpConfig:   httpclient.DefaultConfig(),
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
		converter:    IdentityConverter{},
		serializer:   JSONInputSerializer{},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.warningHandler == nil {
		c.warningHandler = LogWarnings(c.logger)
	}

	if c.httpClient == nil {
		c.httpConfig.Logger = c.logger
		c.httpConfig.Metrics = c.metrics
		hc, err := httpclient.New(c.httpConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create http client: %w", err)
		}
		c.httpClient = hc
	}

	transport, err := NewTransport(baseURL, c.httpClient, c.logger)
	if err != nil {
		return nil, err
	}
	c.transport = transport

	return c, nil
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom HTTP client. Timeout and rate limit options
// are ignored when it is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = client
		return nil
	}
}

// WithLogger sets the logger for requests and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics records request and cache metrics on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) error {
		c.metrics = collector
		return nil
	}
}

// WithPollInterval sets the BlockUntilComplete polling period.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "poll_interval", Message: "must be positive"}
		}
		c.pollInterval = d
		return nil
	}
}

// WithOutputConverter sets the converter applied to each output slot.
func WithOutputConverter(conv OutputConverter) Option {
	return func(c *Client) error {
		if conv == nil {
			conv = IdentityConverter{}
		}
		c.converter = conv
		return nil
	}
}

// WithInputSerializer sets how RunRequest.InputData is serialized.
func WithInputSerializer(ser InputSerializer) Option {
	return func(c *Client) error {
		if ser == nil {
			ser = JSONInputSerializer{}
		}
		c.serializer = ser
		return nil
	}
}

// WithWarningHandler replaces the default handler, which logs warnings.
func WithWarningHandler(h WarningHandler) Option {
	return func(c *Client) error {
		c.warningHandler = h
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpConfig.Timeout = d
		return nil
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) error {
		c.httpConfig.RateLimit = perSecond
		c.httpConfig.RateBurst = burst
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.httpConfig.UserAgent = ua
		return nil
	}
}

// Transport returns the underlying transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL()
}

// PollInterval returns the BlockUntilComplete polling period.
func (c *Client) PollInterval() time.Duration {
	return c.pollInterval
}

func (c *Client) warn(ctx context.Context, w Warning) {
	c.metrics.ObserveWarning(w.Kind())
	recordWarning(ctx, w)
	if c.warningHandler != nil {
		c.warningHandler(ctx, w)
	}
}

// ListWorkflows returns the names of the workflows known to the service.
func (c *Client) ListWorkflows(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.transport.RequestJSON(ctx, http.MethodGet, "v0/workflows", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DescribeWorkflow returns the documentation of a workflow.
func (c *Client) DescribeWorkflow(ctx context.Context, name string) (*WorkflowDescription, error) {
	var desc WorkflowDescription
	endpoint := workflowEndpoint(name) + "?return_format=description"
	if err := c.transport.RequestJSON(ctx, http.MethodGet, endpoint, nil, &desc); err != nil {
		return nil, err
	}
	if desc.Name == "" {
		desc.Name = name
	}
	return &desc, nil
}

// GetWorkflowYAML returns the workflow definition as block-style YAML with
// the service's key order.
func (c *Client) GetWorkflowYAML(ctx context.Context, name string) (string, error) {
	endpoint := workflowEndpoint(name) + "?return_format=yaml"
	raw, _, err := c.transport.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	// JSON is valid YAML; decoding into a node keeps the key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parsing workflow %s: %w", name, err)
	}
	blockStyle(&doc)

	var out strings.Builder
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("rendering workflow %s: %w", name, err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return out.String(), nil
}

// blockStyle clears flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// workflowEndpoint escapes each segment of a hierarchical workflow name such
// as "data_ingestion/spaceeye/spaceeye".
func workflowEndpoint(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "v0/workflows/" + strings.Join(segments, "/")
}

// SystemMetrics returns the service resource report.
func (c *Client) SystemMetrics(ctx context.Context) (SystemMetrics, error) {
	var m SystemMetrics
	if err := c.transport.RequestJSON(ctx, http.MethodGet, "v0/system-metrics", nil, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// VerifyDiskSpace raises a LowDiskSpaceWarning when the service cache has
// less than DiskFreeThreshold bytes free. Only failing to read the metrics
// is an error.
func (c *Client) VerifyDiskSpace(ctx context.Context) error {
	m, err := c.SystemMetrics(ctx)
	if err != nil {
		return err
	}
	if free, ok := m.DiskFree(); ok && free < DiskFreeThreshold {
		c.warn(ctx, LowDiskSpaceWarning{FreeBytes: free})
	}
	return nil
}

// ListRuns returns run records filtered by ids and restricted to fields.
// Both may be empty. Keys of nested fields are dotted, e.g. "details.status".
func (c *Client) ListRuns(ctx context.Context, ids, fields []string) ([]map[string]any, error) {
	var runs []map[string]any
	if err := c.listRuns(ctx, ids, fields, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *Client) listRuns(ctx context.Context, ids, fields []string, out any) error {
	return c.transport.RequestJSON(ctx, http.MethodGet, runsQuery(ids, fields), nil, out)
}

// runsQuery builds v0/runs?ids=..&fields=.. keeping the repeated-key form
// the service expects.
func runsQuery(ids, fields []string) string {
	parts := make([]string, 0, len(ids)+len(fields))
	for _, id := range ids {
		parts = append(parts, "ids="+url.QueryEscape(id))
	}
	for _, f := range fields {
		parts = append(parts, "fields="+url.QueryEscape(f))
	}
	return "v0/runs?" + strings.Join(parts, "&")
}

// DescribeRun returns the full record of a run with its output decoded.
func (c *Client) DescribeRun(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	if err := c.transport.RequestJSON(ctx, http.MethodGet, "v0/runs/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRunByID builds a handle for an existing run.
func (c *Client) GetRunByID(ctx context.Context, id string) (*Run, error) {
	var rows []struct {
		ID         string         `json:"id"`
		Name       string         `json:"name"`
		Workflow   any            `json:"workflow"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := c.listRuns(ctx, []string{id}, []string{"id", "name", "workflow", "parameters"}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &errors.NotFoundError{Resource: "run", ID: id}
	}
	row := rows[0]
	return newRun(c, row.ID, row.Name, normalizeWorkflow(row.Workflow), row.Parameters), nil
}

// CancelRun asks the service to cancel a run and returns its reply.
func (c *Client) CancelRun(ctx context.Context, id string) (string, error) {
	var reply struct {
		Message string `json:"message"`
	}
	if err := c.transport.RequestJSON(ctx, http.MethodPost, "v0/runs/"+url.PathEscape(id)+"/cancel", nil, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

// Submit starts a new run. A low disk space warning does not prevent the
// submission.
func (c *Client) Submit(ctx context.Context, req RunRequest) (*Run, error) {
	desc, err := BuildRunDescriptor(req, c.serializer)
	if err != nil {
		return nil, err
	}
	if err := c.VerifyDiskSpace(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("encoding run descriptor: %w", err)
	}

	var reply struct {
		ID string `json:"id"`
	}
	if err := c.transport.RequestJSON(ctx, http.MethodPost, "v0/runs", payload, &reply); err != nil {
		return nil, err
	}
	if reply.ID == "" {
		return nil, fmt.Errorf("service accepted the run without assigning an id")
	}

	c.logger.InfoContext(ctx, "run submitted",
		log.RunIDKey, reply.ID,
		log.WorkflowKey, WorkflowLabel(desc.Workflow),
		"name", desc.Name,
	)
	return newRun(c, reply.ID, desc.Name, desc.Workflow, desc.Parameters), nil
}

// ResubmitRun submits a copy of an existing run and returns the handle of
// the new run.
func (c *Client) ResubmitRun(ctx context.Context, id string) (*Run, error) {
	if err := c.VerifyDiskSpace(ctx); err != nil {
		return nil, err
	}

	var reply struct {
		ID string `json:"id"`
	}
	if err := c.transport.RequestJSON(ctx, http.MethodPost, "v0/runs/"+url.PathEscape(id)+"/resubmit", nil, &reply); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "run resubmitted", log.RunIDKey, reply.ID, "previous_run_id", id)
	return c.GetRunByID(ctx, reply.ID)
}

// APITimeZone reads the service time zone from the Date header of the base
// URL. When the header is missing or malformed a TimeZoneWarning is raised
// and the local zone is returned.
func (c *Client) APITimeZone(ctx context.Context) (*time.Location, error) {
	header, err := c.transport.Header(ctx, "")
	if err != nil {
		return nil, err
	}

	date := header.Get("Date")
	if date == "" {
		c.warn(ctx, TimeZoneWarning{Reason: "'date' header is missing from the response."})
		return time.Local, nil
	}
	t, err := http.ParseTime(date)
	if err != nil {
		c.warn(ctx, TimeZoneWarning{Reason: "Unable to parse the 'date' header from the response."})
		return time.Local, nil
	}
	return t.Location(), nil
}
