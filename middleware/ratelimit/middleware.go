package ratelimit

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/clock"
)

type Config struct {
	Store          Store
	Clock          clock.Clock
	Rate           int
	Period         time.Duration
	CountMode      config.CountingMode
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

// Middleware applies a fixed-window limit per key. In CountAll mode every
// request is counted before the handler runs; in the other modes the outcome
// of the handler decides whether it counts.
func Middleware(cfg *Config) echo.MiddlewareFunc {
	cfg.Clock = clock.OrReal(cfg.Clock)
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore(cfg.Clock)
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}
	if cfg.CountMode == "" {
		cfg.CountMode = config.CountAll
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)
			now := cfg.Clock.Now()

			count, resetTime, exists := cfg.Store.Get(key)
			if !exists {
				resetTime = now.Add(cfg.Period)
			}

			if count >= cfg.Rate {
				setHeaders(c, cfg.Rate, 0, resetTime)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter(now, resetTime)))
				return cfg.OnLimitReached(c)
			}

			if cfg.CountMode == config.CountAll {
				count = cfg.Store.Increment(key, resetTime)
				setHeaders(c, cfg.Rate, cfg.Rate-count, resetTime)
				return next(c)
			}

			setHeaders(c, cfg.Rate, cfg.Rate-count-1, resetTime)
			err := next(c)

			status := responseStatus(c, err)
			countFailure := cfg.CountMode == config.CountFailures && status >= http.StatusBadRequest
			countSuccess := cfg.CountMode == config.CountSuccess && status < http.StatusBadRequest
			if countFailure || countSuccess {
				cfg.Store.Increment(key, resetTime)
			}

			return err
		}
	}
}

// responseStatus is the status the request will be answered with. A handler
// error has not been written yet, so its status is derived from the error.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return apperr.HTTPStatus(apperr.KindOf(err))
}

func setHeaders(c echo.Context, limit, remaining int, resetTime time.Time) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

func retryAfter(now, resetTime time.Time) int {
	seconds := int(resetTime.Sub(now).Round(time.Second).Seconds())
	return max(seconds, 1)
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}
	return "rate_limit:" + realIP
}

// ScopedKeyGenerator keeps separate windows per scope for the same client.
func ScopedKeyGenerator(scope string) func(c echo.Context) string {
	return func(c echo.Context) string {
		return DefaultKeyGenerator(c) + ":" + scope
	}
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}

// FromConfig builds the middleware from settings, or a pass-through when rate
// limiting is disabled.
func FromConfig(cfg *config.RateLimitConfig, store Store, clk clock.Clock, scope string) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return Middleware(&Config{
		Store:        store,
		Clock:        clk,
		Rate:         cfg.Rate,
		Period:       cfg.Period,
		CountMode:    cfg.CountMode,
		KeyGenerator: ScopedKeyGenerator(scope),
	})
}
