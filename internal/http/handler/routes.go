package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/envelope"
	"ocrapi/internal/i18n"
	"ocrapi/internal/repository"
	"ocrapi/internal/service"
)

// Dependencies are the collaborators shared by all handlers. Each is safe for
// concurrent use; handlers keep no other state.
type Dependencies struct {
	Decoder            envelope.Decoder
	Recognizer         service.RecognitionService
	Localizer          i18n.Localizer
	Logger             *slog.Logger
	ExposeEngineDetail bool

	// DB and Audit are nil when no audit database is configured.
	DB    Pinger
	Audit repository.RecognitionRepository
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	mapper := ResponseMapper{
		Localizer:          deps.Localizer,
		Logger:             deps.Logger,
		ExposeEngineDetail: deps.ExposeEngineDetail,
	}

	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(deps.DB, deps.Localizer))

	ocr := app.Group("/ocr")
	ocr.Get("/test", OcrTest(deps.Localizer))
	ocr.Post("/start", OcrStart(deps.Decoder, deps.Recognizer, mapper))
	if deps.Audit != nil {
		ocr.Get("/recognitions", ListRecognitions(deps.Audit, deps.Localizer, deps.Logger))
	}
}
