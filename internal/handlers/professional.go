package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// ProfessionalHandler serves the professional directory
type ProfessionalHandler struct {
	store storage.Store
}

// NewProfessionalHandler creates a new professional handler
func NewProfessionalHandler(store storage.Store) *ProfessionalHandler {
	return &ProfessionalHandler{store: store}
}

// Search lists available professionals. Ranking is delegated to the
// scoring service; items is always a list, never null.
func (h *ProfessionalHandler) Search(c *fiber.Ctx) error {
	search := &models.ProfessionalSearch{
		Specialty:  c.Query("specialty"),
		City:       c.Query("city"),
		SearchTerm: c.Query("q"),
		Page:       c.QueryInt("page", 1),
		PerPage:    c.QueryInt("per_page", 20),
	}

	items, total, err := h.store.SearchProfessionals(search)
	if err != nil {
		return fail(c, err)
	}
	if items == nil {
		items = []*models.Account{}
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

// Get returns a single professional profile
func (h *ProfessionalHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Professional ID is required",
		})
	}

	account, err := h.store.GetAccount(id)
	if err != nil || !account.IsProfessional() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Professional not found",
		})
	}

	return c.JSON(account)
}
