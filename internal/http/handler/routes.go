package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartrecruiter/internal/http/middleware"
)

// RegisterRoutes attaches the web routes to the Fiber app. authLimit guards
// the credential-handling POSTs against brute-force traffic.
func (h *Handler) RegisterRoutes(app *fiber.App, authLimit fiber.Handler, metricsReg *prometheus.Registry) {
	// Screens
	app.Get("/", h.Landing)
	app.Get("/login", h.LoginPage)
	app.Get("/register", h.RegisterPage)
	app.Get("/upload", middleware.RequireSession(), h.UploadPage)
	app.Get("/result", middleware.RequireSession(), h.Result)

	// Form submits
	app.Post("/login", authLimit, h.Login)
	app.Post("/register", authLimit, h.Register)
	app.Post("/logout", h.Logout)
	app.Post("/upload", middleware.RequireSession(), h.UploadCV)

	// Health: /health checks the session database, /healthz is pure liveness.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	if metricsReg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{})))
	}
}
