package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/ratelimit"
	"go.uber.org/zap"
)

// CorrelationMiddleware copies the request id into the request's user
// context so that services and the error handler log it.
func CorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := requestCorrelationID(c); id != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// RateLimitMiddleware rejects clients that exceed the limiter's budget with
// 429. Limiter failures let the request through.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			observability.WithContextLogger(logger, c.UserContext()).Warn("rate limiter unavailable",
				zap.String("ip", c.IP()),
				zap.Error(err),
			)
			return c.Next()
		}
		if !allowed {
			metrics.IncRateLimited()
			if window := limiter.Window(); window > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			}
			return fiber.NewError(fiber.StatusTooManyRequests, "too many registration attempts")
		}
		return c.Next()
	}
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
