package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/http/middleware"
	"ocrapi/internal/i18n"
)

// errorPayload is the body of every error response.
type errorPayload struct {
	Message string `json:"message"`
}

// writeError writes a JSON error body. message must already be safe for clients.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{Message: message})
}

// requestLocale is the caller's Accept-Language header. The localizer falls back to
// the default locale when it is empty or unsupported.
func requestLocale(c *fiber.Ctx) string {
	return c.Get(fiber.HeaderAcceptLanguage)
}

// ErrorHandler returns a Fiber global error handler writing localized error bodies for
// errors that escape the route handlers (unknown routes, wrong methods, oversized bodies).
func ErrorHandler(loc i18n.Localizer, logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		var key i18n.Key
		switch status {
		case fiber.StatusBadRequest:
			key = i18n.KeyInvalidRequest
		case fiber.StatusNotFound:
			key = i18n.KeyNotFound
		case fiber.StatusMethodNotAllowed:
			key = i18n.KeyMethodNotAllowed
		case fiber.StatusRequestEntityTooLarge:
			key = i18n.KeyPayloadTooLarge
		case fiber.StatusServiceUnavailable:
			key = i18n.KeyUnavailable
		default:
			status = fiber.StatusInternalServerError
			key = i18n.KeyInternal
			logger.Error("unhandled_error",
				"request_id", middleware.GetRequestID(c),
				"path", c.Path(),
				"error", err.Error(),
			)
		}

		return writeError(c, status, loc.Localize(requestLocale(c), key))
	}
}
