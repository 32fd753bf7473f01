package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/set-night/taskcoin/internal/httpx"
)

// Recover returns middleware that recovers from panics.
func Recover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slog.Error("panic recovered in handler",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					httpx.WriteJSON(w, http.StatusInternalServerError, httpx.ErrorBody{
						Error: httpx.ErrorDetail{Code: "internal", Message: http.StatusText(http.StatusInternalServerError)},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
