package mb

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds lightweight counters for HTTP activity.
type Metrics struct {
	TotalRequests     atomic.Int64
	TotalRetries      atomic.Int64
	TotalBackoffNanos atomic.Int64
	ReadRequests      atomic.Int64 // GET
	WriteRequests     atomic.Int64 // POST/PUT/PATCH/DELETE

	mu       sync.Mutex
	byStatus map[int]int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics { return &Metrics{byStatus: make(map[int]int64)} }

// IncRequest counts one logical request (retries are counted separately).
func (m *Metrics) IncRequest(method string) {
	m.TotalRequests.Add(1)
	switch strings.ToUpper(method) {
	case http.MethodGet, "":
		m.ReadRequests.Add(1)
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.WriteRequests.Add(1)
	}
}

// IncRetry increments the retry counter.
func (m *Metrics) IncRetry() { m.TotalRetries.Add(1) }

// AddBackoff accumulates backoff sleep time.
func (m *Metrics) AddBackoff(d time.Duration) { m.TotalBackoffNanos.Add(d.Nanoseconds()) }

// IncStatus counts a response status bucketed by class, with 429 kept apart.
func (m *Metrics) IncStatus(code int) {
	bucket := code / 100 * 100
	if code == http.StatusTooManyRequests {
		bucket = code
	}
	m.mu.Lock()
	if m.byStatus == nil {
		m.byStatus = make(map[int]int64)
	}
	m.byStatus[bucket]++
	m.mu.Unlock()
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests int64
	TotalRetries  int64
	TotalBackoff  time.Duration
	ReadRequests  int64
	WriteRequests int64
	Status2xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

// Snapshot returns a copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		TotalRequests: m.TotalRequests.Load(),
		TotalRetries:  m.TotalRetries.Load(),
		TotalBackoff:  time.Duration(m.TotalBackoffNanos.Load()),
		ReadRequests:  m.ReadRequests.Load(),
		WriteRequests: m.WriteRequests.Load(),
		Status2xx:     m.byStatus[200],
		Status4xx:     m.byStatus[400],
		Status429:     m.byStatus[http.StatusTooManyRequests],
		Status5xx:     m.byStatus[500],
	}
}
