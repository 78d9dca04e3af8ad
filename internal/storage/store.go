package storage

import (
	"github.com/lexlink/lexlink-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Account operations
	CreateAccount(account *models.Account) (*models.Account, error)
	GetAccount(accountID string) (*models.Account, error)
	GetAccountByEmail(email string) (*models.Account, error)
	UpdateAccount(account *models.Account) error
	SearchProfessionals(search *models.ProfessionalSearch) ([]*models.Account, int64, error)

	// Guest session operations
	GetGuestSession(token string) (*models.GuestSession, error)
	CreateGuestSession(session *models.GuestSession) (*models.GuestSession, error)
	UpdateGuestSession(session *models.GuestSession) error
	DeleteExpiredGuestSessions() (int64, error)

	// Transfer operations
	CreateTransfer(transfer *models.Transfer) (*models.Transfer, error)
	GetTransfer(transferID string) (*models.Transfer, error)
	GetTransfersByClient(clientID string) ([]*models.Transfer, error)
	GetTransfersByProfessional(professionalID string, statuses []string) ([]*models.Transfer, error)
	HasPendingTransfer(clientID, professionalID string) (bool, error)
	// TransitionTransfer applies a status change atomically: the stored
	// transfer must still be in fromStatus when the mutation lands, so
	// two concurrent transitions can never both succeed.
	TransitionTransfer(transferID, fromStatus string, apply func(*models.Transfer)) (*models.Transfer, error)

	// Message operations
	CreateMessage(message *models.Message) (*models.Message, error)
	GetMessagesByTransfer(transferID string) ([]*models.Message, error)
	MarkMessagesRead(transferID, readerRole string) (int64, error)
	CountUnreadMessages(transferID, readerRole string) (int64, error)

	// Notification operations
	CreateNotification(notification *models.Notification) (*models.Notification, error)
	GetNotifications(recipientID string, page, perPage int) ([]*models.Notification, int64, error)
	CountUnreadNotifications(recipientID string) (int64, error)
	MarkNotificationRead(notificationID, recipientID string) error
}
