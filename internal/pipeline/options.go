package pipeline

import (
	"log/slog"
	"time"

	"github.com/paveg/churnlab/internal/monitoring"
	"github.com/paveg/churnlab/internal/report"
)

// Option configures a run.
type Option func(*runner)

// WithLogger sets the logger stages report to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRenderer replaces the chart renderer chosen from the plots directory.
func WithRenderer(renderer report.Renderer) Option {
	return func(r *runner) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

// WithRunID tags the run's logs and report with id instead of a random UUID.
func WithRunID(id string) Option {
	return func(r *runner) {
		r.runID = id
	}
}

// WithMetrics records stage timings into mc.
func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(r *runner) {
		if mc != nil {
			r.metrics = mc
		}
	}
}

// WithClock sets the source of the report's start time.
func WithClock(now func() time.Time) Option {
	return func(r *runner) {
		if now != nil {
			r.now = now
		}
	}
}
