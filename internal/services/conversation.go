package services

import (
	"log"
	"strings"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// ConversationService manages the message channel of a transfer. The
// channel opens when the transfer reaches in_progress and becomes
// read-only once it is completed or cancelled.
type ConversationService struct {
	store storage.Store
}

// NewConversationService creates a new conversation service
func NewConversationService(store storage.Store) *ConversationService {
	return &ConversationService{store: store}
}

// Messages returns the conversation in server order (CreatedAt, ID
// tiebreak). Side-effect-free and safe to poll.
func (s *ConversationService) Messages(actor *models.Account, transferID string) ([]*models.Message, error) {
	if _, err := s.participantTransfer(actor, transferID); err != nil {
		return nil, err
	}
	return s.store.GetMessagesByTransfer(transferID)
}

// Send appends a message. Valid only while the transfer is in_progress;
// anything else is a state conflict, never a silent success.
func (s *ConversationService) Send(actor *models.Account, transferID string, sub *models.MessageSubmission) (*models.Message, error) {
	transfer, err := s.participantTransfer(actor, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.IsActive() {
		return nil, apperr.Newf(apperr.KindStateConflict, "cannot send messages while the transfer is %q", transfer.Status)
	}

	content := strings.TrimSpace(sub.Content)
	if content == "" && sub.FileRef == "" {
		return nil, apperr.New(apperr.KindValidation, "message content or attachment is required")
	}
	if sub.FileSize > models.MaxAttachmentBytes {
		return nil, apperr.New(apperr.KindValidation, "attachment exceeds the 10 MB limit")
	}

	message := &models.Message{
		TransferID: transferID,
		SenderID:   actor.AccountID,
		SenderRole: actor.Role,
		Content:    content,
		FileRef:    sub.FileRef,
	}

	message, err = s.store.CreateMessage(message)
	if err != nil {
		return nil, err
	}

	recipientID := transfer.CounterpartOf(actor.AccountID)
	_, err = s.store.CreateNotification(&models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotificationNewMessage,
		TransferID:  transferID,
		Body:        "New message in your case",
	})
	if err != nil {
		log.Printf("Failed to create message notification for %s: %v", recipientID, err)
	}

	return message, nil
}

// MarkRead marks every message not authored by the actor as read.
// Idempotent.
func (s *ConversationService) MarkRead(actor *models.Account, transferID string) error {
	if _, err := s.participantTransfer(actor, transferID); err != nil {
		return err
	}
	_, err := s.store.MarkMessagesRead(transferID, actor.Role)
	return err
}

// UnreadCount returns the number of counterpart messages the actor has
// not read yet.
func (s *ConversationService) UnreadCount(actor *models.Account, transferID string) (int64, error) {
	if _, err := s.participantTransfer(actor, transferID); err != nil {
		return 0, err
	}
	return s.store.CountUnreadMessages(transferID, actor.Role)
}

func (s *ConversationService) participantTransfer(actor *models.Account, transferID string) (*models.Transfer, error) {
	transfer, err := s.store.GetTransfer(transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.Involves(actor.AccountID) {
		return nil, apperr.New(apperr.KindNotFound, "transfer not found")
	}
	return transfer, nil
}
