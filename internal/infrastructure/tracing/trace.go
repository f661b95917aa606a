// Package tracing provides lightweight request tracing: spans with
// parent/child relationships, header propagation and structured-log
// export. It follows OpenTelemetry concepts without the dependency
// surface; traces land in the service logs.
package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TraceID identifies one request across services.
type TraceID string

// SpanID identifies one operation within a trace.
type SpanID string

// Span is a single traced operation.
type Span struct {
	TraceID   TraceID
	SpanID    SpanID
	ParentID  SpanID
	Name      string
	Service   string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Err       error
}

// Tracer creates spans and exports them to the log.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
}

// New creates a tracer for the named service.
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, 1000),
	}
	go t.collect()
	return t
}

// StartSpan opens a span, inheriting trace context from ctx when present.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	if traceID == "" {
		traceID = TraceID(uuid.New().String())
	}
	parentID, _ := ctx.Value(spanIDKey).(SpanID)

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(uuid.New().String()),
		ParentID:  parentID,
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}

	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, spanIDKey, span.SpanID)
	return span, newCtx
}

// Finish closes the span and records its duration.
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// SetTag attaches a key/value tag.
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records a span failure.
func (s *Span) SetError(err error) {
	s.Err = err
}

// Submit queues a finished span for export. Full buffer drops the span
// rather than blocking the request path.
func (t *Tracer) Submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)))
	}
}

func (t *Tracer) collect() {
	for span := range t.spans {
		fields := []zap.Field{
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
			zap.String("operation", span.Name),
			zap.Duration("duration", span.Duration),
			zap.String("service", span.Service),
		}
		if span.ParentID != "" {
			fields = append(fields, zap.String("parent_id", string(span.ParentID)))
		}
		for k, v := range span.Tags {
			fields = append(fields, zap.String(k, v))
		}

		if span.Err != nil {
			t.logger.Error("span completed with error", append(fields, zap.Error(span.Err))...)
		} else {
			t.logger.Debug("span completed", fields...)
		}
	}
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// GetTraceID retrieves the trace ID from context.
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}
