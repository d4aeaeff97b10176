package telemetry

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIncrementAndCount(t *testing.T) {
	metrics := NewMetricsCollector()

	metrics.Increment(MetricCommandsMatched)
	metrics.Increment(MetricCommandsMatched)
	metrics.Add(MetricCommandsFailed, 3)

	if got := metrics.Count(MetricCommandsMatched); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}
	if got := metrics.Count(MetricCommandsFailed); got != 3 {
		t.Errorf("Expected count 3, got %d", got)
	}
	if got := metrics.Count(MetricQueryErrors); got != 0 {
		t.Errorf("Expected zero for untouched counter, got %d", got)
	}
}

func TestObserveAndAverage(t *testing.T) {
	metrics := NewMetricsCollector()

	metrics.Observe(MetricResponseTimeCommand, 10*time.Millisecond)
	metrics.Observe(MetricResponseTimeCommand, 30*time.Millisecond)

	if got := metrics.AverageDuration(MetricResponseTimeCommand); got != 20*time.Millisecond {
		t.Errorf("Expected average 20ms, got %v", got)
	}
	if got := metrics.AverageDuration(MetricResponseTimeQuery); got != 0 {
		t.Errorf("Expected zero average for untouched timer, got %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	metrics := NewMetricsCollector()
	metrics.Increment(MetricConnects)

	snapshot := metrics.Snapshot()
	snapshot[MetricConnects] = 99

	if got := metrics.Count(MetricConnects); got != 1 {
		t.Errorf("Expected snapshot mutation to not affect collector, got %d", got)
	}
}

func TestSummary(t *testing.T) {
	metrics := NewMetricsCollector()

	if got := metrics.Summary(); got != "" {
		t.Errorf("Expected empty summary for fresh collector, got %q", got)
	}

	metrics.Increment(MetricQueriesProcessed)
	summary := metrics.Summary()
	if !strings.Contains(summary, MetricQueriesProcessed+"=1") {
		t.Errorf("Expected counter in summary, got %q", summary)
	}
}

func TestConcurrentAccess(t *testing.T) {
	metrics := NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				metrics.Increment(MetricCommandsSucceeded)
				metrics.Observe(MetricResponseTimeCommand, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := metrics.Count(MetricCommandsSucceeded); got != 1000 {
		t.Errorf("Expected 1000 increments, got %d", got)
	}
}
