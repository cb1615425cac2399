package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
)

// SwaggerDoc serves the swag document with host and scheme taken from the request.
// Each request renders its own copy; spec itself is never written.
func SwaggerDoc(spec *swag.Spec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get(fiber.HeaderXForwardedProto); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		doc := *spec
		doc.Host = c.Hostname()
		doc.Schemes = []string{scheme}

		c.Type("json")
		return c.SendString(doc.ReadDoc())
	}
}
