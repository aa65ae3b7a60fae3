package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/logging"
)

// Logger emits one structured log line per request with request_id, method,
// path, status and latency in milliseconds. Fields are collected after the
// handler chain runs so the final status is captured.
func Logger(log logging.Logger) fiber.Handler {
	if log == nil {
		log = logging.Nop{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		log.Log("http_request", map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Milliseconds()),
		})

		return err
	}
}
