package httpapi

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// withTracing wraps the mux with one span per request. Without a configured
// tracer provider the otel API is a no-op, so the middleware costs nothing
// in the default setup.
func withTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/joelkehle/costcoach/internal/httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "costcoach.http "+routePattern(r.URL.Path))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.Int("http.response.status_code", rec.status),
		)
		if rec.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

// routePattern collapses per-session paths into one span name so traces
// group by route instead of by session id.
func routePattern(path string) string {
	rest, ok := strings.CutPrefix(path, "/v1/sessions/")
	if !ok || rest == "" {
		return path
	}
	switch {
	case strings.HasSuffix(rest, "/report.pdf"):
		return "/v1/sessions/{id}/report.pdf"
	case strings.HasSuffix(rest, "/report"):
		return "/v1/sessions/{id}/report"
	default:
		return "/v1/sessions/{id}"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
