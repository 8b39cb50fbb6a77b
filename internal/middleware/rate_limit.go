package middleware

import (
	"strconv"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "guardian:ratelimit"

// RateLimitMiddleware limits requests per client IP. Counters live in Redis
// so every instance shares them; without Redis they are kept in memory.
type RateLimitMiddleware struct {
	server  *server.Server
	limiter *limiter.Limiter
}

// NewRateLimitMiddleware builds the limiter from rate_limit.auth. An empty or
// invalid rate disables limiting.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	m := &RateLimitMiddleware{server: s}

	if s.Config.RateLimit.Auth == "" {
		return m
	}

	rate, err := limiter.NewRateFromFormatted(s.Config.RateLimit.Auth)
	if err != nil {
		s.Logger.Error().Err(err).Str("rate", s.Config.RateLimit.Auth).Msg("invalid rate limit, limiting disabled")
		return m
	}

	m.limiter = limiter.New(m.store(), rate)
	return m
}

// NewRateLimitMiddlewareWithStore builds a limiter on an explicit store.
func NewRateLimitMiddlewareWithStore(s *server.Server, store limiter.Store, rate limiter.Rate) *RateLimitMiddleware {
	return &RateLimitMiddleware{server: s, limiter: limiter.New(store, rate)}
}

func (r *RateLimitMiddleware) store() limiter.Store {
	if r.server.Redis != nil {
		store, err := sredis.NewStoreWithOptions(r.server.Redis, limiter.StoreOptions{
			Prefix:   rateLimitPrefix,
			MaxRetry: 3,
		})
		if err == nil {
			return store
		}
		r.server.Logger.Warn().Err(err).Msg("redis rate limit store unavailable, using memory store")
	}

	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// Limit enforces the rate for endpoint. A failing store lets the request
// through rather than locking clients out.
func (r *RateLimitMiddleware) Limit(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if r.limiter == nil {
			return next
		}

		return func(c echo.Context) error {
			result, err := r.limiter.Get(c.Request().Context(), endpoint+":"+c.RealIP())
			if err != nil {
				GetLogger(c).Warn().Err(err).Str("endpoint", endpoint).Msg("rate limit store failed")
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
			header.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

			if result.Reached {
				r.RecordRateLimitHit(endpoint)
				GetLogger(c).Warn().Str("endpoint", endpoint).Msg("rate limit reached")
				return errs.NewTooManyRequestsError("Too many requests, please try again later")
			}

			return next(c)
		}
	}
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
