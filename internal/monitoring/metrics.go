// Package monitoring times the stages of a pipeline run.
package monitoring

import (
	"runtime"
	"sync"
	"time"
)

// StageMetrics represents the cost of a single pipeline stage.
type StageMetrics struct {
	Stage         string        `json:"stage"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int           `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector collects and stores stage metrics. It is safe for
// concurrent use.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []StageMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]StageMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// RecordOperation executes fn and records its duration under operation.
func (mc *MetricsCollector) RecordOperation(operation string, fn func() error) error {
	return mc.RecordStage(operation, func() (int, error) {
		return 0, fn()
	})
}

// RecordStage executes fn and records its duration, the row count it reports
// and the approximate heap growth. Failed stages are recorded too.
func (mc *MetricsCollector) RecordStage(stage string, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()

	rows, err := fn()

	duration := time.Since(start)
	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, StageMetrics{
		Stage:         stage,
		Duration:      duration,
		RowsProcessed: rows,
		MemoryUsed:    int64(memAfter.TotalAlloc - memBefore.TotalAlloc), //nolint:gosec // bounded by process memory
		Failed:        err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics in recording order.
func (mc *MetricsCollector) GetMetrics() []StageMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]StageMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	var totalMemory int64
	slowest := mc.metrics[0]
	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		if metric.Duration > slowest.Duration {
			slowest = metric
		}
	}

	return MetricsSummary{
		TotalStages:     len(mc.metrics),
		TotalDuration:   totalDuration,
		TotalMemory:     totalMemory,
		SlowestStage:    slowest.Stage,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalStages     int           `json:"total_stages"`
	TotalDuration   time.Duration `json:"total_duration"`
	TotalMemory     int64         `json:"total_memory"`
	SlowestStage    string        `json:"slowest_stage"`
	AverageDuration time.Duration `json:"average_duration"`
}
