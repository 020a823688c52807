package server

import (
	"strings"

	"amizades/internal/middleware"
	"amizades/internal/models"

	"github.com/gofiber/fiber/v2"
)

// senderBody is the payload of accept and reject.
type senderBody struct {
	SenderID string `json:"senderId"`
}

// receiverBody is the payload of send.
type receiverBody struct {
	ReceiverID string `json:"receiverId"`
}

// successResponse is the body of every mutating endpoint.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// getUserID returns the caller set by AuthRequired.
func getUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return middleware.UserIDFromContext(c.UserContext())
}

// parseBody decodes the JSON body into out, writing a 400 on failure.
// The returned bool is false when a response has already been written.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	return true, nil
}

// requireID trims id and writes a 400 naming field when it is empty.
func requireID(c *fiber.Ctx, id, field string) (string, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false, models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+" is required"))
	}
	return id, true, nil
}

func respondSuccess(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(successResponse{Success: true, Message: message})
}
