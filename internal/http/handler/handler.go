package handler

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/gateway"
	"smartrecruiter/internal/http/middleware"
	"smartrecruiter/internal/logging"
	"smartrecruiter/internal/result"
	"smartrecruiter/internal/session"
	"smartrecruiter/internal/upload"
)

// flashCookie carries a one-shot notice across a redirect, cleared on read.
const flashCookie = "sr_flash"

// Handler bundles the dependencies behind the web screens.
type Handler struct {
	store    *session.Store
	auth     gateway.AuthGateway
	workflow *upload.Workflow
	viewer   *result.Viewer
	db       *sql.DB
	log      logging.Logger
}

// New constructs the web handler set.
func New(store *session.Store, auth gateway.AuthGateway, workflow *upload.Workflow, viewer *result.Viewer, db *sql.DB, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		store:    store,
		auth:     auth,
		workflow: workflow,
		viewer:   viewer,
		db:       db,
		log:      log,
	}
}

// render draws a page inside the main layout, merging in the fields every
// template expects: the current session and any pending flash notice.
func (h *Handler) render(c *fiber.Ctx, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["Session"] = middleware.SessionFromCtx(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = takeFlash(c)
	}
	return c.Render(name, data, "layouts/main")
}

// setFlash queues a notice for the next page view.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    message,
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// takeFlash reads and clears the pending notice.
func takeFlash(c *fiber.Ctx) string {
	msg := c.Cookies(flashCookie)
	if msg != "" {
		c.Cookie(&fiber.Cookie{
			Name:     flashCookie,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Path:     "/",
		})
	}
	return msg
}

// fieldErrors extracts per-field messages from a gateway validation failure.
func fieldErrors(err error) map[string]string {
	var verr *gateway.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
