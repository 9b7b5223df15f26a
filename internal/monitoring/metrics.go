package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds in-process counters for the proxy.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	UpstreamCalls       int64
	UpstreamErrors      int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	RequestCountByStatus map[int]int64
	statusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count.
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count.
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementUpstreamCall increments the outbound Luma call count.
func (m *Metrics) IncrementUpstreamCall() {
	atomic.AddInt64(&m.UpstreamCalls, 1)
}

// IncrementUpstreamError increments the failed Luma call count.
func (m *Metrics) IncrementUpstreamError() {
	atomic.AddInt64(&m.UpstreamErrors, 1)
}

// RecordResponseTime records response time for the running average.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)
}

// RecordRequestByStatus records request count by HTTP status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetStats returns a snapshot of all counters.
func (m *Metrics) GetStats() map[string]any {
	m.statusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		byStatus[code] = count
	}
	m.statusMutex.RUnlock()

	return map[string]any{
		"request_count":        atomic.LoadInt64(&m.RequestCount),
		"error_count":          atomic.LoadInt64(&m.ErrorCount),
		"upstream_calls":       atomic.LoadInt64(&m.UpstreamCalls),
		"upstream_errors":      atomic.LoadInt64(&m.UpstreamErrors),
		"avg_response_time_ms": atomic.LoadInt64(&m.AverageResponseTime) / int64(time.Millisecond),
		"requests_by_status":   byStatus,
		"uptime_seconds":       int64(time.Since(m.StartTime).Seconds()),
	}
}
