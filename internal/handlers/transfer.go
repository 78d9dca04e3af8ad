package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/services"
)

// TransferHandler handles transfer lifecycle requests
type TransferHandler struct {
	transfers *services.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transfers *services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Create submits a new transfer request. A duplicate pending request to
// the same professional answers 409 so the client can surface an
// "already pending" state instead of a generic failure.
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var sub models.TransferSubmission
	if err := c.BodyParser(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	transfer, err := h.transfers.Create(account, &sub)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(transfer)
}

// List returns the polling set for the actor's dashboard
func (h *TransferHandler) List(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	transfers, err := h.transfers.ListForActor(account)
	if err != nil {
		return fail(c, err)
	}
	if transfers == nil {
		transfers = []*models.Transfer{}
	}

	return c.JSON(fiber.Map{
		"transfers": transfers,
		"count":     len(transfers),
	})
}

// Get returns a single transfer visible to the actor
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	transfer, err := h.transfers.Get(account, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(transfer)
}

// Accept moves a pending transfer to in_progress
func (h *TransferHandler) Accept(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var req struct {
		Response    string  `json:"response"`
		AgreedTerms *string `json:"agreed_terms"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	transfer, err := h.transfers.Accept(account, c.Params("id"), req.Response, req.AgreedTerms)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(transfer)
}

// Reject declines a pending transfer
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var req struct {
		Response string `json:"response"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	transfer, err := h.transfers.Reject(account, c.Params("id"), req.Response)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(transfer)
}

// Cancel ends an in-progress transfer
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	transfer, err := h.transfers.Cancel(account, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(transfer)
}

// Complete closes an in-progress transfer
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	transfer, err := h.transfers.Complete(account, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(transfer)
}
