package api

import (
	"fmt"
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

	ReadRequests  atomic.Int64 // GET/HEAD
	WriteRequests atomic.Int64 // POST/PUT/PATCH/DELETE

	mu         sync.Mutex
	hostCounts map[string]int64
	status2xx  int64
	status4xx  int64
	status429  int64
	status5xx  int64
}

func NewMetrics() *Metrics { return &Metrics{hostCounts: make(map[string]int64)} }

// IncRequest increments per-host and total request counters.
func (m *Metrics) IncRequest(host, method string) {
	m.TotalRequests.Add(1)
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		m.ReadRequests.Add(1)
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.WriteRequests.Add(1)
	}
	m.mu.Lock()
	m.hostCounts[host]++
	m.mu.Unlock()
}

func (m *Metrics) IncRetry() { m.TotalRetries.Add(1) }

func (m *Metrics) AddBackoff(d time.Duration) { m.TotalBackoffNanos.Add(d.Nanoseconds()) }

// IncStatus tracks status buckets. 3xx responses are not counted.
func (m *Metrics) IncStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case code == http.StatusTooManyRequests:
		m.status429++
	case code >= 200 && code < 300:
		m.status2xx++
	case code >= 400 && code < 500:
		m.status4xx++
	case code >= 500:
		m.status5xx++
	}
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests int64
	TotalRetries  int64
	TotalBackoff  time.Duration
	HostCounts    map[string]int64
	ReadRequests  int64
	WriteRequests int64
	Status2xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	hosts := make(map[string]int64, len(m.hostCounts))
	for k, v := range m.hostCounts {
		hosts[k] = v
	}
	return MetricsSnapshot{
		TotalRequests: m.TotalRequests.Load(),
		TotalRetries:  m.TotalRetries.Load(),
		TotalBackoff:  time.Duration(m.TotalBackoffNanos.Load()),
		HostCounts:    hosts,
		ReadRequests:  m.ReadRequests.Load(),
		WriteRequests: m.WriteRequests.Load(),
		Status2xx:     m.status2xx,
		Status4xx:     m.status4xx,
		Status429:     m.status429,
		Status5xx:     m.status5xx,
	}
}

// String renders a one-line summary for logs.
func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("requests=%d (read=%d write=%d) retries=%d backoff=%s 2xx=%d 4xx=%d 429=%d 5xx=%d",
		s.TotalRequests, s.ReadRequests, s.WriteRequests, s.TotalRetries, s.TotalBackoff,
		s.Status2xx, s.Status4xx, s.Status429, s.Status5xx)
}
