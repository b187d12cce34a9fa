package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	apiTracer = otel.Tracer("fpl-h2h/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// startSpan opens a child span for handler operations. Middleware and
// response helpers run on every request and stay on the caller's span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	// Routes filtered from otelhttp (healthz, swagger assets) carry no
	// root span; starting one here would leave it orphaned.
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	op, ok := strings.CutPrefix(name, "httpapi.Handler.")
	if !ok {
		return false
	}
	// validateRequest is a per-request helper despite the Handler prefix.
	return op != "validateRequest"
}
