package middleware

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/qmshub/api/internal/metrics"
	"github.com/qmshub/api/pkg/apierror"
	"github.com/qmshub/api/pkg/domain/identity"
	"github.com/qmshub/api/pkg/logger"
)

// Limiter is satisfied by the Redis-backed fixed-window limiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// localLimiter keeps a token bucket per tenant when Redis is unavailable.
// The limit then holds per replica instead of globally, which is acceptable
// for a fallback.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLocalLimiter creates an in-process per-key limiter allowing
// requestsPerWindow requests per window.
func NewLocalLimiter(requestsPerWindow int, window float64) Limiter {
	return &localLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requestsPerWindow) / window),
		burst:    requestsPerWindow,
	}
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow(), nil
}

// RateLimit rejects requests beyond the per-tenant budget with 429. Keyed by
// organization so one noisy tenant cannot starve the others. Must run after
// Authenticate.
func RateLimit(limiter Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tcx, ok := identity.TenantContextFrom(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			key := tcx.OrganizationID.String()
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.WithContext(r.Context()).Warn("rate limiter unavailable, allowing request", "error", err)
			}
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(key).Inc()
				apierror.New(http.StatusTooManyRequests, apierror.CodeRateLimitExceeded, "rate limit exceeded").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
