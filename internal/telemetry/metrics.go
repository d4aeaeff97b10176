// Package telemetry provides metrics collection and reporting
// for monitoring the DavinciMCP command and gateway pipeline.
package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// Metric name constants for the command pipeline and the MCP gateway.
const (
	// Intent matching
	MetricCommandsMatched   = "commands.matched"
	MetricCommandsUnmatched = "commands.unmatched"

	// Execution outcomes
	MetricCommandsSucceeded = "commands.succeeded"
	MetricCommandsFailed    = "commands.failed"

	// MCP protocol client
	MetricQueriesProcessed = "mcp.queries.processed"
	MetricQueryErrors      = "mcp.queries.errors"
	MetricConnects         = "mcp.connects"
	MetricConnectFailures  = "mcp.connect_failures"

	// Response times
	MetricResponseTimeCommand = "commands.response_time"
	MetricResponseTimeQuery   = "mcp.queries.response_time"
)

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// Increment increments the named counter by 1.
func (m *MetricsCollector) Increment(name string) {
	m.Add(name, 1)
}

// Add increments the named counter by the given amount.
func (m *MetricsCollector) Add(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
	m.latestTime[name] = time.Now()
}

// Observe records a duration sample for the named timer.
func (m *MetricsCollector) Observe(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers[name] = append(m.timers[name], d)
	m.latestTime[name] = time.Now()
}

// Count returns the current value of the named counter.
func (m *MetricsCollector) Count(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// AverageDuration returns the mean of the recorded samples for the named
// timer, or zero when no samples exist.
func (m *MetricsCollector) AverageDuration(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := m.timers[name]
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// Snapshot returns a copy of all counters for reporting.
func (m *MetricsCollector) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// Summary returns a human-readable one-line summary of the collected
// counters, for debug logging at shutdown.
func (m *MetricsCollector) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := ""
	for k, v := range m.counters {
		if summary != "" {
			summary += " "
		}
		summary += fmt.Sprintf("%s=%d", k, v)
	}
	return summary
}
