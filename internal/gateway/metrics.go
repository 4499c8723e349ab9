package gateway

import (
	"sync/atomic"
	"time"
)

// Metrics tracks gateway-level counters using atomic operations for
// lock-free concurrency.
type Metrics struct {
	requests        atomic.Int64
	messagesSent    atomic.Int64
	messagesFetched atomic.Int64
	errors          atomic.Int64
	totalLatency    atomic.Int64 // nanoseconds
}

// RecordRequest records one admin API request and its latency.
func (m *Metrics) RecordRequest(latency time.Duration) {
	m.requests.Add(1)
	m.totalLatency.Add(int64(latency))
}

// RecordSent records an outbound message posted through the provider.
func (m *Metrics) RecordSent() {
	m.messagesSent.Add(1)
}

// RecordFetched records n history messages served.
func (m *Metrics) RecordFetched(n int) {
	m.messagesFetched.Add(int64(n))
}

// RecordError records a provider or handler error.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	requests := m.requests.Load()
	snap := MetricsSnapshot{
		Requests:        requests,
		MessagesSent:    m.messagesSent.Load(),
		MessagesFetched: m.messagesFetched.Load(),
		Errors:          m.errors.Load(),
	}
	if requests > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / requests)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Requests        int64         `json:"requests"`
	MessagesSent    int64         `json:"messages_sent"`
	MessagesFetched int64         `json:"messages_fetched"`
	Errors          int64         `json:"errors"`
	AvgLatency      time.Duration `json:"avg_latency_ns"`
}
