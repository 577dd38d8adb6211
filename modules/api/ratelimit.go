package api

import (
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter throttles the chat requests of one connection.
type rateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// newRateLimiter allows bursts of up to burst requests, refilled at perSecond.
func newRateLimiter(burst, perSecond int) *rateLimiter {
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		now:     time.Now,
	}
}

func (r *rateLimiter) allow() bool {
	return r.limiter.AllowN(r.now(), 1)
}
