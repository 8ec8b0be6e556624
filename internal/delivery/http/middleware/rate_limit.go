package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user so a shared office IP does not throttle every admin at once.
type RateLimiter struct {
	buckets *gocache.Cache
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
}

// NewRateLimiter forgets a caller after idle without requests.
func NewRateLimiter(limit rate.Limit, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: gocache.New(idle, idle/2),
		limit:   limit,
		burst:   burst,
		idle:    idle,
	}
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)
			if !rl.bucket(key).Allow() {
				logger.WithContext(r.Context()).Warn().Str("caller", key).Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				utils.WriteJSON(w, http.StatusTooManyRequests, domain.Response{
					Success: false,
					Message: "Bạn thao tác quá nhanh, vui lòng thử lại sau",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
	}
	// re-set to push the expiry forward
	rl.buckets.Set(key, lim, rl.idle)
	return lim.(*rate.Limiter)
}

// Callers tracks how many buckets are live.
func (rl *RateLimiter) Callers() int {
	return rl.buckets.ItemCount()
}

func callerKey(r *http.Request) string {
	if claims, err := utils.ExtractClaims(r); err == nil {
		return "user:" + claims.UserID
	}
	return "ip:" + clientIP(r)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
