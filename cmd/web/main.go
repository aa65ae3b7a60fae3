package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"smartrecruiter/internal/config"
	"smartrecruiter/internal/database"
	"smartrecruiter/internal/database/migration"
	"smartrecruiter/internal/gateway"
	handlers "smartrecruiter/internal/http/handler"
	"smartrecruiter/internal/http/middleware"
	"smartrecruiter/internal/logging"
	"smartrecruiter/internal/otel"
	"smartrecruiter/internal/repository/postgres"
	"smartrecruiter/internal/result"
	"smartrecruiter/internal/session"
	"smartrecruiter/internal/storage"
	"smartrecruiter/internal/upload"
	"smartrecruiter/web"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.NewJSONLogger(os.Stdout)
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Session state database (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// CV archive is a best-effort supplement: analysis works without it.
	archive, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Log("cv_archive_disabled", map[string]any{"error": err.Error()})
		archive = nil
	}

	repo := postgres.NewVisitorPostgres(db)
	store := session.NewStore(repo, logger)
	backend := gateway.NewClient(cfg.Backend)
	workflow := upload.NewWorkflow(cfg.Upload, backend, repo, archive, logger)
	viewer := result.NewViewer(backend, store, repo)

	metricsReg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(metricsReg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Session events feed both the login/logout counters and the audit log.
	events, unsubscribe := store.Subscribe()
	defer unsubscribe()
	go metrics.ObserveSessionEvents(events)

	auditEvents, unsubscribeAudit := store.Subscribe()
	defer unsubscribeAudit()
	go func() {
		for ev := range auditEvents {
			logger.Log("session_event", map[string]any{
				"kind":       string(ev.Kind),
				"visitor_id": ev.VisitorID,
			})
		}
	}()

	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler(),
		// Twice the upload ceiling: oversized-but-plausible files must reach
		// the workflow's own size check so the user sees its message, not a
		// transport-level 413.
		BodyLimit: int(cfg.Upload.MaxSizeBytes) * 2,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())
	app.Use(middleware.Visitor(cfg.Session.CookieName, time.Duration(cfg.Session.TTLHours)*time.Hour))
	app.Use(middleware.LoadSession(store))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))

	authLimiter := middleware.NewLimiterManager(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	defer authLimiter.Close()

	h := handlers.New(store, backend, workflow, viewer, db, logger)
	h.RegisterRoutes(app, middleware.RateLimit(authLimiter), metricsReg)

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
