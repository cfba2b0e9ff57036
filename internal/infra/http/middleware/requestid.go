package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/qmshub/api/pkg/logger"
)

// RequestID copies the chi request id into the logger's context key and
// echoes it back to the client.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chimiddleware.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set("X-Request-Id", reqID)
			ctx := context.WithValue(r.Context(), logger.ContextKeyRequestID, reqID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
