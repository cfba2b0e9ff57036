package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout attaches a deadline to every request context. Handlers and the
// storage layer propagate the deadline; an expired context surfaces as a
// timeout error from the service layer rather than a severed connection.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
