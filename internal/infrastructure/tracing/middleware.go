package tracing

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Trace propagation headers.
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// HTTPMiddleware creates gin middleware that opens a span per request and
// propagates inbound trace context.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			ctx = context.WithValue(ctx, traceIDKey, TraceID(traceID))
		}
		if spanID := c.GetHeader(HeaderSpanID); spanID != "" {
			ctx = context.WithValue(ctx, spanIDKey, SpanID(spanID))
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.FullPath())
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))

		c.Next()

		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}
