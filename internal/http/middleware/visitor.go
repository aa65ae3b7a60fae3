package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// VisitorLocalKey is the key under which the visitor ID is stored in locals.
const VisitorLocalKey = "visitor_id"

// Visitor assigns every browser a stable anonymous ID carried in a cookie.
// The ID keys all per-visitor state (session, cached analysis). A missing or
// malformed cookie gets replaced with a fresh UUID.
func Visitor(cookieName string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Locals(VisitorLocalKey, id)

		// Refresh the cookie on every request so active visitors never expire.
		c.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    id,
			Expires:  time.Now().Add(ttl),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})

		return c.Next()
	}
}

// VisitorFromCtx extracts the visitor ID stored by Visitor.
func VisitorFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(VisitorLocalKey).(string); ok {
		return v
	}
	return ""
}
