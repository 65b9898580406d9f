// Package api contains the JSON handlers behind /api.
package api

import (
	"github.com/gofiber/fiber/v3"
)

// jsonOK returns a 200 response with data as the body.
func jsonOK(c fiber.Ctx, data any) error {
	return c.JSON(data)
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
