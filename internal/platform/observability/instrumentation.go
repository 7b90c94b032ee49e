package observability

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Enabled reports whether observability has been toggled on.
func Enabled() bool {
	_, cfg := currentLogger()
	return cfg.Enabled
}

// StartSpan records a lightweight span lifecycle around an operation.
// The returned func must be called exactly once with the operation's outcome.
func StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	start := time.Now()
	logger, cfg := currentLogger()
	if logger != nil && cfg.Enabled {
		logger.LogAttrs(ctx, slog.LevelDebug, "obs span start",
			slog.String("component", component),
			slog.String("operation", operation),
		)
	}

	return ctx, func(err error) {
		elapsed := time.Since(start)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		defaultRegistry.observe(component+"."+operation, outcome, elapsed)

		if logger == nil || !cfg.Enabled {
			return
		}
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", elapsed),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		logger.LogAttrs(ctx, level, "obs span end", attrs...)
	}
}

// RecordMetric adds value to the named counter and emits it via the configured logger.
func RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	defaultRegistry.add(metricKey(name, labels), value)

	logger, cfg := currentLogger()
	if logger == nil || !cfg.Enabled {
		return
	}
	attrs := []slog.Attr{
		slog.String("metric", name),
		slog.Float64("value", value),
	}
	for k, v := range labels {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "obs metric", attrs...)
}

// SpanStats aggregates finished spans for one component.operation pair.
type SpanStats struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	AvgMillis   float64 `json:"avg_ms"`
	MaxMillis   float64 `json:"max_ms"`
	totalMillis float64
}

// Snapshot is a point-in-time copy of the in-process counters.
type Snapshot struct {
	Spans    map[string]SpanStats `json:"spans"`
	Counters map[string]float64   `json:"counters"`
}

// Collect returns a copy of all counters recorded since the last Setup.
func Collect() Snapshot {
	return defaultRegistry.snapshot()
}

type registry struct {
	mu       sync.Mutex
	spans    map[string]*SpanStats
	counters map[string]float64
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{
		spans:    make(map[string]*SpanStats),
		counters: make(map[string]float64),
	}
}

func (r *registry) reset() {
	r.mu.Lock()
	r.spans = make(map[string]*SpanStats)
	r.counters = make(map[string]float64)
	r.mu.Unlock()
}

func (r *registry) observe(key, outcome string, elapsed time.Duration) {
	ms := float64(elapsed) / float64(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.spans[key]
	if !ok {
		s = &SpanStats{}
		r.spans[key] = s
	}
	s.Count++
	if outcome == "error" {
		s.Errors++
	}
	s.totalMillis += ms
	s.AvgMillis = s.totalMillis / float64(s.Count)
	if ms > s.MaxMillis {
		s.MaxMillis = ms
	}
}

func (r *registry) add(key string, value float64) {
	r.mu.Lock()
	r.counters[key] += value
	r.mu.Unlock()
}

func (r *registry) snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Snapshot{
		Spans:    make(map[string]SpanStats, len(r.spans)),
		Counters: make(map[string]float64, len(r.counters)),
	}
	for k, v := range r.spans {
		out.Spans[k] = *v
	}
	for k, v := range r.counters {
		out.Counters[k] = v
	}
	return out
}

// metricKey renders name{k=v,...} with labels sorted by key.
func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}
