package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/http/middleware"
	"ocrapi/internal/i18n"
	"ocrapi/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListRecognitions godoc
// @Summary List recognition audit records
// @Description Metadata only, newest first.
// @Tags audit
// @Produce json
// @Param limit query int false "page size (1-100)"
// @Param offset query int false "rows to skip"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Router /ocr/recognitions [get]
func ListRecognitions(repo repository.RecognitionRepository, loc i18n.Localizer, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
		if err != nil || limit < 1 || limit > maxPageLimit {
			return writeError(c, fiber.StatusBadRequest, loc.Localize(requestLocale(c), i18n.KeyInvalidRequest))
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil || offset < 0 {
			return writeError(c, fiber.StatusBadRequest, loc.Localize(requestLocale(c), i18n.KeyInvalidRequest))
		}

		res, err := repo.List(c.UserContext(), repository.PageQuery{Limit: limit, Offset: offset})
		if err != nil {
			logger.Error("list_recognitions_failed",
				"request_id", middleware.GetRequestID(c),
				"error", err.Error(),
			)
			return writeError(c, fiber.StatusInternalServerError, loc.Localize(requestLocale(c), i18n.KeyInternal))
		}
		return c.JSON(res)
	}
}
