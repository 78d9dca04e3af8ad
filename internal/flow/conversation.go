package flow

import (
	"log"
	"sync"
	"time"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// ConversationView synchronizes one transfer's messages by polling
// while the view is open. Message order is server-determined; the view
// replaces its list wholesale on every sync and never reorders
// locally. Delivery latency is bounded by the poll interval.
type ConversationView struct {
	backend    Backend
	identity   *IdentityContext
	transferID string
	poller     *Poller

	mu       sync.RWMutex
	messages []*models.Message
	unread   int
	lastErr  error
}

// NewConversationView creates a view for the given transfer.
func NewConversationView(backend Backend, identity *IdentityContext, transferID string, interval time.Duration) *ConversationView {
	v := &ConversationView{
		backend:    backend,
		identity:   identity,
		transferID: transferID,
	}
	v.poller = NewPoller(interval, v.Sync)
	return v
}

// Start begins polling; call when the conversation becomes visible.
func (v *ConversationView) Start() {
	v.poller.Start()
}

// Stop suspends polling; call when the view is hidden or torn down.
func (v *ConversationView) Stop() {
	v.poller.Stop()
}

// Sync fetches the conversation. Idempotent and side-effect-free; a
// transient failure skips the cycle.
func (v *ConversationView) Sync() {
	messages, err := v.backend.FetchMessages(v.identity.Token(), v.transferID)
	if err != nil {
		if apperr.IsAuthExpired(err) {
			v.identity.HandleAuthExpired()
			return
		}
		log.Printf("Conversation sync skipped: %v", err)
		v.mu.Lock()
		v.lastErr = err
		v.mu.Unlock()
		return
	}

	role := v.identity.Actor().Role
	unread := 0
	for _, m := range messages {
		if m.SenderRole != role && !m.IsRead {
			unread++
		}
	}

	v.mu.Lock()
	v.messages = messages
	v.unread = unread
	v.lastErr = nil
	v.mu.Unlock()
}

// Send appends a text message. A transfer that is not in progress
// answers with a state conflict which is surfaced unchanged.
func (v *ConversationView) Send(content string) (*models.Message, error) {
	message, err := v.backend.SendMessage(v.identity.Token(), v.transferID, &models.MessageSubmission{
		Content: content,
	})
	if err != nil {
		return nil, err
	}
	v.Sync()
	return message, nil
}

// SendAttachment appends a file message. Oversized attachments are
// rejected here, before any network call, with the same error shape as
// a send failure.
func (v *ConversationView) SendAttachment(fileRef string, size int64) (*models.Message, error) {
	if size > models.MaxAttachmentBytes {
		return nil, apperr.New(apperr.KindValidation, "attachment exceeds the 10 MB limit")
	}

	message, err := v.backend.SendMessage(v.identity.Token(), v.transferID, &models.MessageSubmission{
		FileRef:  fileRef,
		FileSize: size,
	})
	if err != nil {
		return nil, err
	}
	v.Sync()
	return message, nil
}

// MarkRead marks all counterpart messages as read. Idempotent.
func (v *ConversationView) MarkRead() error {
	if err := v.backend.MarkMessagesRead(v.identity.Token(), v.transferID); err != nil {
		return err
	}
	v.Sync()
	return nil
}

// Messages returns the last synced conversation in server order.
func (v *ConversationView) Messages() []*models.Message {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]*models.Message{}, v.messages...)
}

// Unread returns the counterpart messages not yet read.
func (v *ConversationView) Unread() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.unread
}

// LastError returns the most recent skipped-cycle error.
func (v *ConversationView) LastError() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastErr
}
