package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/guttosm/tickerdesk/internal/domain/dto"
)

// Defaults used by the page host. Every submit costs one upstream analysis.
const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiter keeps one token bucket per client IP: limit tokens, refilled evenly
// over window.
type limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
	lastGC   time.Time
}

func newLimiter(limit int, window time.Duration) *limiter {
	return &limiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		window:   window,
		now:      time.Now,
	}
}

// allow takes one token for key. When none is left it returns false and how
// long until the next token.
func (l *limiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.gcLocked(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

// gcLocked drops visitors idle for a full window (their bucket is full again),
// at most once per window.
func (l *limiter) gcLocked(now time.Time) {
	if now.Sub(l.lastGC) < l.window {
		return
	}
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.window {
			delete(l.visitors, k)
		}
	}
	l.lastGC = now
}

// RateLimiter limits each client IP to limit requests per window.
//
// Behavior:
//   - A client may burst up to limit requests; tokens refill evenly over window.
//   - Out of tokens: 429 Too Many Requests with a Retry-After header (seconds
//     until the next token) and a dto.ErrorResponse body.
//   - Non-positive arguments fall back to DefaultRateLimit / DefaultRateWindow.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter(middleware.DefaultRateLimit, middleware.DefaultRateWindow))
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	l := newLimiter(limit, window)

	return func(c *gin.Context) {
		if ok, wait := l.allow(c.ClientIP()); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
