package mbtichat

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Tracing — the orchestrator's observability side channel
// ──────────────────────────────────────────────
//
// Provider choice and per-provider failures are surfaced here (and in
// RespondDetailed), never inline in the returned text.

// SpanKind identifies the unit of work a span covers.
type SpanKind string

const (
	SpanKindOrchestrator SpanKind = "orchestrator"
	SpanKindProvider     SpanKind = "provider"
	SpanKindSimulator    SpanKind = "simulator"
)

// Span records a single unit of work.
type Span struct {
	SpanID     string                 `json:"span_id"`
	TraceID    string                 `json:"trace_id"`
	ParentID   string                 `json:"parent_id,omitempty"`
	Name       string                 `json:"name"`
	Kind       SpanKind               `json:"kind"`
	StartTime  time.Time              `json:"start_time"`
	EndTime    time.Time              `json:"end_time,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Children   []*Span                `json:"children,omitempty"`
	Status     string                 `json:"status"` // "running", "ok", "error"
	Error      string                 `json:"error,omitempty"`
	mu         sync.Mutex
}

// DurationMs returns the span duration in milliseconds.
func (s *Span) DurationMs() float64 {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return float64(end.Sub(s.StartTime).Microseconds()) / 1000.0
}

// End marks the span as finished.
func (s *Span) End(status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Status = status
	s.Error = errMsg
}

// SetAttribute sets a key-value attribute on the span.
func (s *Span) SetAttribute(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Attributes == nil {
		s.Attributes = make(map[string]interface{})
	}
	s.Attributes[key] = value
}

func (s *Span) addChild(child *Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Children = append(s.Children, child)
}

// SpanExporter exports finished root spans.
type SpanExporter interface {
	Export(span *Span)
}

// NullSpanExporter discards all spans.
type NullSpanExporter struct{}

func (e *NullSpanExporter) Export(span *Span) {}

// ConsoleSpanExporter prints spans to log.
type ConsoleSpanExporter struct{}

func (e *ConsoleSpanExporter) Export(span *Span) {
	log.Printf("[Trace] %s %s | %s | %.1fms",
		span.Kind, span.Name, span.Status, span.DurationMs())
}

// CallbackSpanExporter calls a function for each span.
type CallbackSpanExporter struct {
	Fn func(span *Span)
}

func (e *CallbackSpanExporter) Export(span *Span) {
	e.Fn(span)
}

// Tracer creates and manages spans. Nesting is by explicit parent, so
// concurrent root spans (parallel fan-out calls) never contaminate each
// other's trees.
type Tracer struct {
	exporter SpanExporter
	enabled  bool
	traceID  string
	mu       sync.Mutex
}

// NewTracer creates a tracer. A nil exporter discards spans.
func NewTracer(exporter SpanExporter, enabled bool) *Tracer {
	if exporter == nil {
		exporter = &NullSpanExporter{}
	}
	return &Tracer{exporter: exporter, enabled: enabled}
}

// NewTrace starts a new trace and returns its ID.
func (t *Tracer) NewTrace() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.traceID = randomHex(16)
	return t.traceID
}

// StartSpan creates and starts a new span. A nil parent starts a root span
// on the tracer's current trace; a non-nil parent nests under it and
// inherits its trace ID.
func (t *Tracer) StartSpan(name string, kind SpanKind, parent *Span, attrs map[string]interface{}) *Span {
	if !t.enabled {
		return &Span{Name: name, Kind: kind, Status: "ok"}
	}

	var traceID, parentID string
	if parent != nil {
		traceID = parent.TraceID
		parentID = parent.SpanID
	} else {
		t.mu.Lock()
		if t.traceID == "" {
			t.traceID = randomHex(16)
		}
		traceID = t.traceID
		t.mu.Unlock()
	}

	span := &Span{
		SpanID:     randomHex(6),
		TraceID:    traceID,
		ParentID:   parentID,
		Name:       name,
		Kind:       kind,
		StartTime:  time.Now(),
		Attributes: attrs,
		Status:     "running",
	}
	if parent != nil {
		parent.addChild(span)
	}
	return span
}

// EndSpan ends the span and exports it if it is a root span.
func (t *Tracer) EndSpan(span *Span, status string, errMsg string) {
	if !t.enabled {
		return
	}

	span.End(status, errMsg)

	if span.ParentID == "" {
		t.mu.Lock()
		t.exporter.Export(span)
		t.mu.Unlock()
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
