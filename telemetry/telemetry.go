// Package telemetry collects hierarchical timings for render operations.
//
// Collectors travel through the context so instrumentation stays
// non-intrusive: library code calls FromContext and gets a no-op collector
// unless the caller installed a real one.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("render income-statement")
//	child := timer.Child("resolve variables")
//	// ... work ...
//	child.End()
//	timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers operation timings.
type Collector interface {
	// Start begins timing an operation; end it with Timer.End.
	Start(name string) Timer

	// Report writes the collected timings.
	Report(w io.Writer)
}

// Timer tracks one operation and supports nesting via Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector installs a collector into the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the installed collector, or a no-op collector when none
// is present.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
