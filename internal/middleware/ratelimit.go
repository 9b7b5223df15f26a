package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/caish-collective/luma-proxy/internal/errors"
)

// RateLimiter applies a per-client-IP token bucket ahead of the events
// handler. Buckets refill at perMin/60 per second with a burst of perMin.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

// NewRateLimiter creates a limiter with the given per-minute budget. A
// non-positive budget falls back to 60.
func NewRateLimiter(perMin int) *RateLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMin,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(rl.perMin)/60.0), rl.perMin)
		rl.limiters[ip] = lim
	}
	return lim
}

// Handler returns the gin middleware enforcing the budget.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			appErr := apperrors.NewRateLimitError()
			apperrors.LogError(c, appErr)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
			return
		}
		c.Next()
	}
}
