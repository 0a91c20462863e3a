// Package ratelimit applies a fixed-window per-client limit to the public
// lookup endpoints. The registry's reads are open to anyone, so this is
// the only brake on scripted scraping.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"votesmart/pkg/requestcontext"
)

// Limiter counts requests per client key in redis fixed windows.
type Limiter struct {
	rdb      *redis.Client
	logger   *slog.Logger
	requests int
	window   time.Duration
}

// New builds a limiter allowing requests per window for each client key.
func New(rdb *redis.Client, requests int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		rdb:      rdb,
		logger:   logger,
		requests: requests,
		window:   window,
	}
}

// Allow reports whether the client identified by key may proceed. Redis
// failures fail open: a broken limiter must not take down public reads.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil {
		return true
	}

	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.rdb.TxPipeline()
	count := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "error", err)
		return true
	}

	return count.Val() <= int64(l.requests)
}

// Middleware rejects clients over the limit with 429. A nil limiter is a
// pass-through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.rdb == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := requestcontext.ClientIP(ctx)
		if key == "" {
			key = r.RemoteAddr
		}

		if !l.Allow(ctx, key) {
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"client_ip", key,
				"path", r.URL.Path,
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
