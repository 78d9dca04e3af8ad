package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/services"
)

// MessageHandler handles conversation requests
type MessageHandler struct {
	conversations *services.ConversationService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(conversations *services.ConversationService) *MessageHandler {
	return &MessageHandler{conversations: conversations}
}

// List returns the conversation in server order
func (h *MessageHandler) List(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	messages, err := h.conversations.Messages(account, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// Send appends a message to an in-progress conversation
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var sub models.MessageSubmission
	if err := c.BodyParser(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	message, err := h.conversations.Send(account, c.Params("id"), &sub)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// MarkRead marks all counterpart messages as read
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	if err := h.conversations.MarkRead(account, c.Params("id")); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Messages marked as read",
	})
}
