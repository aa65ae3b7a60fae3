package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/http/middleware"
	"smartrecruiter/internal/upload"
)

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// renderError renders the shared error page without leaking internal details.
// message must already be safe for display.
func renderError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("error", fiber.Map{
		"Title":     "Something went wrong",
		"Status":    status,
		"Message":   message,
		"RequestID": requestIDFromCtx(c),
		"Session":   middleware.SessionFromCtx(c),
	}, "layouts/main")
}

// ErrorHandler returns the Fiber global error handler. It maps errors that
// escape the handlers onto the shared error page with a safe message.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error. Please try again later."

		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			switch status {
			case fiber.StatusNotFound:
				message = "The page you are looking for does not exist."
			case fiber.StatusMethodNotAllowed:
				message = "Method not allowed."
			case fiber.StatusTooManyRequests:
				message = e.Message
			case fiber.StatusRequestEntityTooLarge:
				// Backstop for bodies the transport refuses before the upload
				// workflow can apply its own ceiling.
				message = upload.ErrTooLarge.Error()
			case fiber.StatusBadRequest:
				message = "Bad request."
			}
		}

		if renderErr := renderError(c, status, message); renderErr != nil {
			// Template failure, fall back to plain text.
			return c.Status(status).SendString(message)
		}
		return nil
	}
}
