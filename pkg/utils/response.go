package utils

import "github.com/gofiber/fiber/v2"

// JSON writes payload as-is. Response bodies deliberately match the wire
// shapes the frontend already consumes, so there is no success envelope.
func JSON(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

// Error writes the error body {error, code}. The message is for humans;
// code carries the taxonomy kind for machine callers.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  codeForStatus(status),
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthenticated"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusBadGateway:
		return "upstream_error"
	default:
		return "internal_error"
	}
}
