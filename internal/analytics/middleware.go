package analytics

import (
	"context"
	"net/http"
	"strings"

	"portfolio-api/internal/logging"
)

// Middleware records a page view for GET requests. Infrastructure
// paths are skipped so health checks and docs don't skew the numbers.
func Middleware(recorder *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && !skipPath(r.URL.Path) {
				go func(ctx context.Context, path string) {
					if err := recorder.RecordPageView(context.WithoutCancel(ctx), path); err != nil {
						logging.GetLoggerFromContext(ctx).Warn("failed to record page view",
							"path", path,
							"error", err.Error())
					}
				}(r.Context(), r.URL.Path)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func skipPath(path string) bool {
	return path == "/health" ||
		strings.HasPrefix(path, "/swagger") ||
		strings.HasPrefix(path, "/admin")
}
