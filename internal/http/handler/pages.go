package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/http/middleware"
)

// Landing renders the marketing page. Navigation adapts to the session: a
// signed-in visitor sees a greeting, everyone else sees the login link.
func (h *Handler) Landing(c *fiber.Ctx) error {
	return h.render(c, "landing", "Smart Recruiter — AI CV Analysis", nil)
}

// LoginPage renders the sign-in form. Already-authenticated visitors are sent
// straight to the upload screen.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	if middleware.SessionFromCtx(c).Present() {
		return c.Redirect("/upload", fiber.StatusSeeOther)
	}
	return h.render(c, "login", "Sign In", fiber.Map{
		"Email":  "",
		"Errors": map[string]string{},
	})
}

// RegisterPage renders the account creation form.
func (h *Handler) RegisterPage(c *fiber.Ctx) error {
	if middleware.SessionFromCtx(c).Present() {
		return c.Redirect("/upload", fiber.StatusSeeOther)
	}
	return h.render(c, "register", "Create Account", fiber.Map{
		"FullName": "",
		"Email":    "",
		"Errors":   map[string]string{},
	})
}

// UploadPage renders the CV submission form. Protected by RequireSession.
func (h *Handler) UploadPage(c *fiber.Ctx) error {
	return h.render(c, "upload", "Upload Your CV", fiber.Map{
		"AppliedJob": "",
		"Errors":     map[string]string{},
	})
}
