package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
	"golang.org/x/time/rate"
)

const limiterIdleAfter = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time

	lastCleanup time.Time
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	return &ipLimiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(float64(perMinute) / 60),
		burst:       burst,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// reserve consumes a token for ip. When none is available it returns the wait
// until the next one and consumes nothing.
func (l *ipLimiter) reserve(ip string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.cleanup(now)

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return delay, false
	}
	return 0, true
}

func (l *ipLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < limiterIdleAfter {
		return
	}
	l.lastCleanup = now
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleAfter {
			delete(l.visitors, ip)
		}
	}
}

// RateLimit limits requests per client IP with a token bucket refilled at
// perMinute tokens per minute. Rejected requests get 429 and Retry-After.
func RateLimit(perMinute, burst int, logger *slog.Logger) gin.HandlerFunc {
	l := newIPLimiter(perMinute, burst)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		delay, ok := l.reserve(ip)
		if ok {
			c.Next()
			return
		}

		retryAfter := max(int(math.Ceil(delay.Seconds())), 1)
		logger.WarnContext(c.Request.Context(), "rate limit exceeded",
			"ip", ip,
			"path", c.FullPath(),
			"retry_after", retryAfter,
		)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		response.Fail(c, http.StatusTooManyRequests, "Too many requests, please try again later",
			response.ErrorEntry{Message: "Too many requests, please try again later", Code: response.CodeTooManyRequests})
	}
}
