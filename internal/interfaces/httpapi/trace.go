package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("pick-league/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// routeParams maps path wildcards to span attribute keys.
var routeParams = []struct {
	param string
	key   attribute.Key
}{
	{"leagueID", "pick.league_id"},
	{"cardID", "pick.card_id"},
	{"year", "pick.year"},
	{"week", "pick.week"},
	{"runID", "pick.settlement_run_id"},
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Filtered routes like /healthz carry no parent; skip root spans.
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

// startRouteSpan is startSpan plus the route's path values as attributes.
func startRouteSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx, span := startSpan(r.Context(), name)
	if attrs := routeAttributes(r); len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func routeAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, rp := range routeParams {
		if v := strings.TrimSpace(r.PathValue(rp.param)); v != "" {
			attrs = append(attrs, rp.key.String(v))
		}
	}
	return attrs
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
