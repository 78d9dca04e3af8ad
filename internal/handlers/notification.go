package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// NotificationHandler serves the polling notification feed
type NotificationHandler struct {
	store storage.Store
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store storage.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List returns a page of notifications with the unread count in the
// envelope
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	items, total, err := h.store.GetNotifications(account.AccountID, c.QueryInt("page", 1), c.QueryInt("per_page", 20))
	if err != nil {
		return fail(c, err)
	}
	if items == nil {
		items = []*models.Notification{}
	}

	unread, err := h.store.CountUnreadNotifications(account.AccountID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"items":        items,
		"total":        total,
		"unread_count": unread,
	})
}

// UnreadCount returns only the unread counter for cheap polling
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	unread, err := h.store.CountUnreadNotifications(account.AccountID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"unread_count": unread,
	})
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	if err := h.store.MarkNotificationRead(c.Params("id"), account.AccountID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}
