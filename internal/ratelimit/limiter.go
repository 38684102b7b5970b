package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// Limiter applies per-client, per-route-class admission control ahead of
// any credential logic.
type Limiter struct {
	store  CounterStore
	logger *zap.Logger
}

// NewLimiter constructs a limiter over the given counter store.
func NewLimiter(store CounterStore, logger *zap.Logger) *Limiter {
	return &Limiter{store: store, logger: logger}
}

// ForClass returns middleware enforcing the window for one route class.
// A store failure admits the request; rejecting trusted traffic because the
// counter backend is down is worse than briefly exceeding a ceiling.
func (l *Limiter) ForClass(class string, window config.RateWindow, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", class, c.IP())

		count, reset, err := l.store.Incr(c.UserContext(), key, window.Window)
		if err != nil {
			l.logger.Warn("rate limit store unavailable, admitting request",
				zap.String("class", class), zap.Error(err))
			return c.Next()
		}

		if count > int64(window.Max) {
			seconds := int(reset.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Set("Retry-After", strconv.Itoa(seconds))
			return apperrors.NewRateLimited(message, reset)
		}
		return c.Next()
	}
}
