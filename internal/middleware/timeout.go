package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds every request context so storage and renderer
// calls cannot block indefinitely. Expired deadlines surface through the
// error taxonomy as timeouts; the core never retries.
func TimeoutMiddleware(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
