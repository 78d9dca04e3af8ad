package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/handlers"
	"github.com/lexlink/lexlink-backend/internal/middleware"
	"github.com/lexlink/lexlink-backend/internal/services"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, auth *services.AuthService,
	transfers *services.TransferService, conversations *services.ConversationService,
	questions *services.QuestionService) {

	healthHandler := handlers.NewHealthHandler("1.0.0")
	authHandler := handlers.NewAuthHandler(auth)
	professionalHandler := handlers.NewProfessionalHandler(store)
	transferHandler := handlers.NewTransferHandler(transfers)
	messageHandler := handlers.NewMessageHandler(conversations)
	notificationHandler := handlers.NewNotificationHandler(store)
	questionHandler := handlers.NewQuestionHandler(questions)

	requireAuth := middleware.RequireAuth(auth)
	optionalAuth := middleware.OptionalAuth(auth)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	// Authentication boundary
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)
	authGroup.Post("/pending-selection", requireAuth, authHandler.SavePendingSelection)
	authGroup.Delete("/pending-selection", requireAuth, authHandler.ClearPendingSelection)

	// Professional directory
	professionals := api.Group("/professionals")
	professionals.Get("/", professionalHandler.Search)
	professionals.Get("/:id", professionalHandler.Get)

	// Anonymous-friendly question endpoint
	api.Post("/questions", optionalAuth, questionHandler.Ask)

	// Transfer lifecycle
	transferGroup := api.Group("/transfers", requireAuth)
	transferGroup.Post("/", transferHandler.Create)
	transferGroup.Get("/", transferHandler.List)
	transferGroup.Get("/:id", transferHandler.Get)
	transferGroup.Post("/:id/accept", transferHandler.Accept)
	transferGroup.Post("/:id/reject", transferHandler.Reject)
	transferGroup.Post("/:id/cancel", transferHandler.Cancel)
	transferGroup.Post("/:id/complete", transferHandler.Complete)

	// Conversation
	transferGroup.Get("/:id/messages", messageHandler.List)
	transferGroup.Post("/:id/messages", messageHandler.Send)
	transferGroup.Post("/:id/messages/read", messageHandler.MarkRead)

	// Notifications
	notificationGroup := api.Group("/notifications", requireAuth)
	notificationGroup.Get("/", notificationHandler.List)
	notificationGroup.Get("/unread-count", notificationHandler.UnreadCount)
	notificationGroup.Post("/:id/read", notificationHandler.MarkRead)
}
