package ratelimiter

import (
	"net/http"

	"code.cloudfoundry.org/lager/v3"
)

type KeyFunc func(r *http.Request) string

// RateLimiterMiddleware throttles requests per key, typically the client
// address of a proxied request.
type RateLimiterMiddleware struct {
	keyFunc     KeyFunc
	logger      lager.Logger
	RateLimiter Limiter
}

func NewRateLimiterMiddleware(keyFunc KeyFunc, rateLimiter Limiter, logger lager.Logger) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		keyFunc:     keyFunc,
		logger:      logger,
		RateLimiter: rateLimiter,
	}
}

func (mw *RateLimiterMiddleware) CheckRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := mw.keyFunc(r)
		if key != "" && mw.RateLimiter.ExceedsLimit(key) {
			mw.logger.Info("error-exceed-rate-limit", lager.Data{"key": key})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"Request-Limit-Exceeded","message":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
