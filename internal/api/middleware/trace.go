package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/weeki-api/internal/api/shared"
)

// TraceMiddleware stamps a fresh trace ID onto the request context so
// handlers, stores, and error responses can all tag their output with
// it. It must run before anything that calls shared.GetTraceID, which
// in practice means near the top of the chain.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		// Request-start line at debug; the handlers log the outcome.
		log := slog.With(slog.String("trace_id", traceID))
		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
