package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/services"
)

// QuestionHandler answers visitor questions. Anonymous requests are
// accepted; the quota that limits them is a client-side heuristic, not
// an authorization rule enforced here.
type QuestionHandler struct {
	questions *services.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// Ask forwards a question to the response engine
func (h *QuestionHandler) Ask(c *fiber.Ctx) error {
	account := middleware.AccountFromContext(c)

	var req struct {
		Question string `json:"question"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.questions.Ask(account, c.Get("X-Guest-Token"), req.Question)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(result)
}
