package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/services"
)

// AuthHandler handles registration, login and identity validation
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a new client or professional account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg models.Registration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	account, token, err := h.auth.Register(&reg)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":    token,
		"identity": account,
	})
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	account, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"identity": account,
	})
}

// Me validates the stored token and returns the current identity,
// including any pending hand-off selection awaiting resumption.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	draft, err := models.DecodeDraft(account.PendingSelection)
	if err != nil {
		draft = nil
	}

	return c.JSON(fiber.Map{
		"identity":          account,
		"pending_selection": draft,
	})
}

// SavePendingSelection attaches a suspended hand-off draft to the
// account so it survives a full reload.
func (h *AuthHandler) SavePendingSelection(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var draft models.HandoffDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.auth.SavePendingSelection(account, &draft); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Pending selection saved",
	})
}

// ClearPendingSelection removes the stored draft after resumption or
// cancellation.
func (h *AuthHandler) ClearPendingSelection(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	if err := h.auth.ClearPendingSelection(account); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Pending selection cleared",
	})
}
