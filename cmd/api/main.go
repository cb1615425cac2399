package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ocrapi/docs"
	"ocrapi/internal/config"
	"ocrapi/internal/database"
	"ocrapi/internal/database/migration"
	"ocrapi/internal/envelope"
	handlers "ocrapi/internal/http/handler"
	"ocrapi/internal/http/middleware"
	"ocrapi/internal/i18n"
	"ocrapi/internal/logging"
	"ocrapi/internal/otel"
	"ocrapi/internal/recognition"
	"ocrapi/internal/recognition/gemini"
	"ocrapi/internal/recognition/remote"
	"ocrapi/internal/repository"
	"ocrapi/internal/repository/postgres"
	"ocrapi/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title OCR API
// @version 1.0
// @description Document recognition: submit a base64 document, receive the extracted fields.
// @BasePath /
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	localizer, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("init localizer: %w", err)
	}
	logger.Info("localizer_ready", "default_locale", localizer.Default().String())

	engine, closeEngine, err := newEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init recognition engine: %w", err)
	}
	defer closeEngine()

	// The audit database is optional; without DB_HOST the service keeps nothing.
	var (
		db    *sql.DB
		audit repository.RecognitionRepository
	)
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		audit = postgres.NewRecognitionPostgres(db)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	recMetrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register recognition metrics: %w", err)
	}

	recognizer, err := service.NewRecognitionService(engine, service.Options{
		Timeout: cfg.OCR.Timeout,
		Audit:   audit,
		Metrics: recMetrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "ocrapi",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(localizer, logger),
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	deps := handlers.Dependencies{
		Decoder:            envelope.Decoder{MaxDecodedBytes: cfg.OCR.MaxDecodedBytes},
		Recognizer:         recognizer,
		Localizer:          localizer,
		Logger:             logger,
		ExposeEngineDetail: cfg.OCR.ExposeEngineDetail,
		Audit:              audit,
	}
	if db != nil {
		deps.DB = db
	}
	handlers.RegisterRoutes(app, deps)

	// The document route is registered first so the UI's doc.json is rendered per request.
	app.Get("/swagger/doc.json", handlers.SwaggerDoc(docs.SwaggerInfo))
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_started", "addr", addr, "engine", cfg.OCR.Engine, "audit_enabled", audit != nil)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

// newEngine builds the recognition engine selected by OCR_ENGINE.
func newEngine(ctx context.Context, cfg *config.AppConfig) (recognition.Engine, func(), error) {
	switch cfg.OCR.Engine {
	case "remote":
		e, err := remote.New(cfg.Remote.URL, cfg.Remote.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return e, func() {}, nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini engine")
		}
		e, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, nil, err
		}
		return e, func() { _ = e.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown OCR_ENGINE %q (want remote or gemini)", cfg.OCR.Engine)
	}
}
