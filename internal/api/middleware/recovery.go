package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/UnknownOlympus/cartographer/internal/api/response"
)

func Recovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					response.Error(w, http.StatusInternalServerError, "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
