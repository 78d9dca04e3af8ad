package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/apperr"
)

// fail maps a classified error to its HTTP status and surfaces the
// message verbatim. StateConflict and AuthExpired reach the caller with
// their specific text so the right recovery action stays visible.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Something went wrong"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"kind":  string(apperr.KindOf(err)),
	})
}
