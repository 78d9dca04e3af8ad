package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MaxAttachmentBytes is the ceiling for attachment references. Oversized
// uploads are rejected before any network call is made.
const MaxAttachmentBytes = 10 * 1024 * 1024

// Message is one entry in a transfer conversation. Append-only; neither
// actor may delete the other's messages. Ordering is by CreatedAt with
// ID as tiebreak.
type Message struct {
	gorm.Model

	MessageID  string `json:"message_id" gorm:"uniqueIndex"`
	TransferID string `json:"transfer_id" gorm:"index"`
	SenderID   string `json:"sender_id"`
	SenderRole string `json:"sender_role"`
	Content    string `json:"content"`
	FileRef    string `json:"file_ref,omitempty"`
	IsRead     bool   `json:"is_read" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate MessageID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == "" {
		m.MessageID = fmt.Sprintf("MS%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// MessageSubmission is the payload for appending a message.
type MessageSubmission struct {
	Content  string `json:"content"`
	FileRef  string `json:"file_ref"`
	FileSize int64  `json:"file_size"`
}
