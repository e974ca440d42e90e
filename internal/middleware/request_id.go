package middleware

import (
	"time"

	"inkpress/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

// NewRequestIDMiddleware honors an inbound X-Request-ID and mints a ULID
// when the caller did not send one.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
