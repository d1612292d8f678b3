package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// NewRequestID assigns each request a correlation ID, honoring one supplied
// by the client in X-Request-ID.
func NewRequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RequestID returns the correlation ID assigned to this request, if any.
func RequestID(c fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
