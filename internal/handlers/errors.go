package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps a business error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindInvalidArgument:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindPermissionDenied:
		return fiber.StatusForbidden
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error response. Errors without a business kind
// are logged and hidden behind a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(services.KindOf(err))
	if status == fiber.StatusInternalServerError {
		attrs := []any{"action", action, "error", err.Error(), "path", c.Path()}
		if rid, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, "request_id", rid)
		}
		if uid, uerr := middleware.UserID(c); uerr == nil {
			attrs = append(attrs, "user_id", uid.String())
		}
		slog.Error("request failed", attrs...)
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(),
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

// paramID parses a UUID path parameter. Malformed IDs cannot name an
// existing record, so they are reported as not found.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: what + " not found",
	})
}
