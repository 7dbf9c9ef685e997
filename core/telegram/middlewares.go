package telegram

import (
	"time"

	coreconfig "tasabot/core/config"
	"tasabot/core/telegram/middleware"
)

// DefaultMiddlewares returns the standard middleware chain: panic recovery,
// per-user rate limiting, structured update logging and outgoing message
// metrics, in that order.
func DefaultMiddlewares(cfg *coreconfig.Config) []Middleware {
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}

	interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond

	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "rate_limit", Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval: interval,
			Exclude:  exclude,
		})},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
