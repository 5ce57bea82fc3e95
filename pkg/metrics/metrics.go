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

// Package metrics instruments the run lifecycle client with Prometheus
// collectors. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmvibes_client"

// Collector owns the client metrics and the registry they are exposed on.
type Collector struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	warnings  *prometheus.CounterVec
}

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests sent to the service, by method and status code.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests sent to the service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_refreshes_total",
			Help:      "Run handle reads that went to the network, by field.",
		}, []string{"field"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_cache_hits_total",
			Help:      "Run handle reads answered from the immutable cache, by field.",
		}, []string{"field"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal warnings raised by the client, by kind.",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(c.requests, c.latency, c.refreshes, c.cacheHits, c.warnings)
	return c
}

// Registry returns the registry holding the client collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// InstrumentRoundTripper wraps next so every round trip is counted and timed.
func (c *Collector) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if c == nil {
		return next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(c.requests,
		promhttp.InstrumentRoundTripperDuration(c.latency, next))
}

// ObserveRefresh counts a run field read that required a network call.
func (c *Collector) ObserveRefresh(field string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(field).Inc()
}

// ObserveCacheHit counts a run field read served from the cache.
func (c *Collector) ObserveCacheHit(field string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(field).Inc()
}

// ObserveWarning counts a non-fatal warning of the given kind.
func (c *Collector) ObserveWarning(kind string) {
	if c == nil {
		return
	}
	c.warnings.WithLabelValues(kind).Inc()
}

// WriteToTextfile dumps the current metric values in the Prometheus text
// format, for the node exporter textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
