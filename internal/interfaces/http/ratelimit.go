package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/jhoicas/channah-state/internal/application/dto"
)

// RateLimit limita peticiones por IP con el formato de ulule ("120-M" = 120 por minuto).
func RateLimit(formatted string) (fiber.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("rate limit %q: %w", formatted, err)
	}
	instance := limiter.New(memory.NewStore(), rate)
	return func(c *fiber.Ctx) error {
		ctx, err := instance.Get(c.Context(), c.IP())
		if err != nil {
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))
		if ctx.Reached {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones"})
		}
		return c.Next()
	}, nil
}
