// Package middleware provides the HTTP middleware planty mounts in front of
// its routes.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/ratelimit"
	"github.com/shashiranjanraj/planty/pkg/response"
)

// RateLimit limits each client IP to max requests per window, counting in
// limiter. When the limiter itself fails the request is let through.
//
//	r.Use(middleware.RateLimit(ratelimit.NewRedis(rdb, "rl:"), 100, time.Minute))
func RateLimit(limiter ratelimit.Limiter, max int, window time.Duration) func(http.Handler) http.Handler {
	limit := strconv.Itoa(max)
	retry := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), "http:"+clientIP(r), max, window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			if !ok {
				metrics.RateLimited.WithLabelValues("http").Inc()
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", retry)
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
