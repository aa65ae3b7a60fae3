package middleware

import (
	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/model"
	"smartrecruiter/internal/session"
)

// SessionLocalKey is the key under which the restored session is stored in locals.
const SessionLocalKey = "session"

// LoadSession restores the visitor's session from the store and places it in
// context locals for downstream handlers. Visitors without a session get a
// nil entry; handlers behave the same for anonymous and broken state.
func LoadSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := store.Initialize(c.UserContext(), VisitorFromCtx(c))
		c.Locals(SessionLocalKey, sess)
		return c.Next()
	}
}

// RequireSession guards routes that only make sense for signed-in visitors.
// Anonymous requests are redirected to the login screen; the guard decides
// before the protected handler runs.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !SessionFromCtx(c).Present() {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// SessionFromCtx extracts the session stored by LoadSession. Returns nil for
// anonymous visitors.
func SessionFromCtx(c *fiber.Ctx) *model.Session {
	if s, ok := c.Locals(SessionLocalKey).(*model.Session); ok {
		return s
	}
	return nil
}
