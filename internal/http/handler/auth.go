package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/gateway"
	"smartrecruiter/internal/http/middleware"
)

// Login handles the sign-in form submit. Validation and upstream failures
// re-render the form with the email preserved; success commits the session
// and moves on to the upload screen.
func (h *Handler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	sess, err := h.auth.Login(c.UserContext(), email, password)
	if err != nil {
		return h.renderLoginFailure(c, email, err)
	}

	visitorID := middleware.VisitorFromCtx(c)
	if err := h.store.Commit(c.UserContext(), visitorID, sess); err != nil {
		h.log.Log("session_commit_failed", map[string]any{
			"visitor_id": visitorID,
			"error":      err.Error(),
		})
		return h.renderLoginFailure(c, email, errors.New("Could not save your session. Please try again."))
	}

	return c.Redirect("/upload", fiber.StatusSeeOther)
}

func (h *Handler) renderLoginFailure(c *fiber.Ctx, email string, err error) error {
	data := fiber.Map{
		"Email":  email,
		"Errors": map[string]string{},
	}

	if fields := fieldErrors(err); fields != nil {
		data["Errors"] = fields
	} else {
		var serr *gateway.ServerError
		switch {
		case errors.As(err, &serr):
			data["Flash"] = serr.Message
		default:
			data["Flash"] = "Login failed. Please try again."
		}
	}

	return h.render(c, "login", "Sign In", data)
}

// Register handles account creation. A successful registration never signs
// the visitor in; they are redirected to the login form with a notice.
func (h *Handler) Register(c *fiber.Ctx) error {
	fullName := c.FormValue("fullName")
	email := c.FormValue("email")
	password := c.FormValue("password")
	confirmPassword := c.FormValue("confirmPassword")

	err := h.auth.Register(c.UserContext(), fullName, email, password, confirmPassword)
	if err == nil {
		setFlash(c, "Account created. Please log in.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	data := fiber.Map{
		"FullName": fullName,
		"Email":    email,
		"Errors":   map[string]string{},
	}

	if fields := fieldErrors(err); fields != nil {
		data["Errors"] = fields
	} else {
		var serr *gateway.ServerError
		switch {
		case errors.As(err, &serr):
			data["Flash"] = serr.Message
		default:
			data["Flash"] = "Registration failed. Please try again."
		}
	}

	return h.render(c, "register", "Create Account", data)
}

// Logout discards the visitor's archived CV, clears the session and returns
// to the landing page.
func (h *Handler) Logout(c *fiber.Ctx) error {
	visitorID := middleware.VisitorFromCtx(c)
	h.workflow.DiscardArchive(c.UserContext(), visitorID)
	if err := h.store.Clear(c.UserContext(), visitorID); err != nil {
		h.log.Log("session_clear_failed", map[string]any{
			"visitor_id": visitorID,
			"error":      err.Error(),
		})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
