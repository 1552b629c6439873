package handler

import (
	"go-whatsapp-commerce/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// writeError maps a service error to its HTTP status with a stable code the
// dashboard can branch on.
func writeError(c *fiber.Ctx, err error) error {
	e := apperr.From(err)
	return c.Status(e.Kind.HTTPStatus()).JSON(fiber.Map{
		"error": e.Message,
		"code":  e.Code,
	})
}

// callerID reads the user id set by the auth middleware. Empty when the route
// is not behind RequireAuth; services treat that as unauthenticated.
func callerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
