package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/birbnest/jsonregistry/internal/telemetry"
)

// SetupMiddleware configures all app-wide middleware.
func SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())

	app.Use(telemetry.FiberLoggingMiddleware())

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	app.Use(errorHandler())
	app.Use(telemetry.FiberMetricsMiddleware())
}

// errorHandler converts an unhandled fiber.Error into the ErrorResponse
// shape so every failure path, not just the handlers', returns JSON.
func errorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "internal error"
		errCode := ErrCodeInternalError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		switch code {
		case fiber.StatusNotFound:
			errCode = ErrCodeNotFound
		case fiber.StatusBadRequest:
			errCode = ErrCodeInvalidRequest
		case fiber.StatusTooManyRequests:
			errCode = ErrCodeRateLimited
		case fiber.StatusUnauthorized:
			errCode = ErrCodeUnauthorized
		}

		telemetry.L().WithError(err).WithFields(map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		}).Warn("request failed")

		return c.Status(code).JSON(NewErrorResponse(message, errCode))
	}
}

// ValidateAPIKey rejects requests missing the configured API key, checked
// against either the X-API-Key header or a "Bearer <key>" Authorization
// header. A blank apiKey disables the check entirely.
func ValidateAPIKey(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		key := c.Get("X-API-Key")
		if key == "" {
			auth := c.Get("Authorization")
			if len(auth) > 7 && auth[:7] == "Bearer " {
				key = auth[7:]
			}
		}

		if key != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(
				NewErrorResponse("invalid or missing API key", ErrCodeUnauthorized),
			)
		}
		return c.Next()
	}
}

// RateLimiter is a simple fixed-window, in-memory, per-IP rate limiter.
// It is adequate for a single instance; a multi-instance deployment
// needs a shared store instead, which is out of scope here.
func RateLimiter(requestsPerMinute int) fiber.Handler {
	type client struct {
		count     int
		windowEnd time.Time
	}

	clients := make(map[string]*client)
	var mu sync.Mutex

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		now := time.Now()

		mu.Lock()
		cl, exists := clients[ip]
		if !exists || now.After(cl.windowEnd) {
			cl = &client{windowEnd: now.Add(time.Minute)}
			clients[ip] = cl
		}

		if cl.count >= requestsPerMinute {
			windowEnd := cl.windowEnd
			mu.Unlock()
			c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", windowEnd.Unix()))
			return c.Status(fiber.StatusTooManyRequests).JSON(
				NewErrorResponse("rate limit exceeded", ErrCodeRateLimited),
			)
		}

		cl.count++
		count, windowEnd := cl.count, cl.windowEnd
		mu.Unlock()
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", requestsPerMinute-count))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", windowEnd.Unix()))

		return c.Next()
	}
}
