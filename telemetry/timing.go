package telemetry

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// TimingCollector records timings as a tree of spans.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*span
}

type span struct {
	name     string
	start    time.Time
	end      time.Time
	children []*span
}

func (s *span) duration() time.Duration {
	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// NewTimingCollector creates an empty timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins a new top-level span.
func (c *TimingCollector) Start(name string) Timer {
	s := &span{name: name, start: time.Now()}

	c.mu.Lock()
	c.roots = append(c.roots, s)
	c.mu.Unlock()

	return &timingTimer{collector: c, span: s}
}

// Report writes the span tree, one line per span with its duration.
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		writeSpan(w, root, 0)
	}
}

func writeSpan(w io.Writer, s *span, depth int) {
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), s.name, s.duration().Round(time.Microsecond))
	for _, child := range s.children {
		writeSpan(w, child, depth+1)
	}
}

type timingTimer struct {
	collector *TimingCollector
	span      *span
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.span.end.IsZero() {
		t.span.end = time.Now()
	}
}

func (t *timingTimer) Child(name string) Timer {
	s := &span{name: name, start: time.Now()}

	t.collector.mu.Lock()
	t.span.children = append(t.span.children, s)
	t.collector.mu.Unlock()

	return &timingTimer{collector: t.collector, span: s}
}
