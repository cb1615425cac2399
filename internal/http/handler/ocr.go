package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/envelope"
	"ocrapi/internal/http/middleware"
	"ocrapi/internal/i18n"
	"ocrapi/internal/recognition"
	"ocrapi/internal/service"
)

// messagePayload is the body of the liveness probe.
type messagePayload struct {
	Message string `json:"message"`
}

// ResponseMapper turns recognition outcomes into HTTP responses.
// It holds no per-request state.
type ResponseMapper struct {
	Localizer i18n.Localizer
	Logger    *slog.Logger
	// ExposeEngineDetail echoes the engine failure detail in 500 messages.
	ExposeEngineDetail bool
}

// respond writes the recognized fields flattened at the top level of the body.
func (m ResponseMapper) respond(c *fiber.Ctx, fields recognition.Fields) error {
	if fields == nil {
		fields = recognition.Fields{}
	}
	return c.Status(fiber.StatusOK).JSON(fields)
}

// writeFailure logs err and writes the matching error response:
// 400 for envelope errors, 500 for everything else.
func (m ResponseMapper) writeFailure(c *fiber.Ctx, err error) error {
	locale := requestLocale(c)

	var (
		envErr *envelope.Error
		recErr *recognition.Error
	)
	switch {
	case errors.As(err, &envErr):
		m.logFailure(c, slog.LevelWarn, fiber.StatusBadRequest, envErr.Kind.String(), err)
		return writeError(c, fiber.StatusBadRequest, m.Localizer.Localize(locale, i18n.KeyInvalidRequest))

	case errors.As(err, &recErr):
		m.logFailure(c, slog.LevelError, fiber.StatusInternalServerError, "recognition", err)
		msg := m.Localizer.Localize(locale, i18n.KeyProcessingErrorGeneric)
		if m.ExposeEngineDetail {
			msg = m.Localizer.Localize(locale, i18n.KeyProcessingError, recErr.Detail)
		}
		return writeError(c, fiber.StatusInternalServerError, msg)

	default:
		m.logFailure(c, slog.LevelError, fiber.StatusInternalServerError, "internal", err)
		return writeError(c, fiber.StatusInternalServerError, m.Localizer.Localize(locale, i18n.KeyProcessingErrorGeneric))
	}
}

func (m ResponseMapper) logFailure(c *fiber.Ctx, level slog.Level, status int, kind string, err error) {
	m.Logger.Log(c.UserContext(), level, "ocr_request_failed",
		"request_id", middleware.GetRequestID(c),
		"status", status,
		"error_kind", kind,
		"error", err.Error(),
	)
}

// OcrTest godoc
// @Summary Liveness probe
// @Tags ocr
// @Produce json
// @Success 200 {object} messagePayload
// @Router /ocr/test [get]
func OcrTest(loc i18n.Localizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(messagePayload{Message: loc.Localize("", i18n.KeyServiceUp)})
	}
}

// OcrStart godoc
// @Summary Recognize a document
// @Description Decodes the base64 document and returns the extracted fields at the top level of the body.
// @Tags ocr
// @Accept json
// @Produce json
// @Param request body object true "filecontent (base64), fileextension, documenttype"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /ocr/start [post]
func OcrStart(dec envelope.Decoder, svc service.RecognitionService, m ResponseMapper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Decoding copies out of the request buffer, which fasthttp reuses.
		env, err := dec.ParseAndDecode(c.Body())
		if err != nil {
			return m.writeFailure(c, err)
		}

		ctx := service.WithRequestID(c.UserContext(), middleware.GetRequestID(c))
		fields, err := svc.Recognize(ctx, env)
		if err != nil {
			return m.writeFailure(c, err)
		}
		return m.respond(c, fields)
	}
}
