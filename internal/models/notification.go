package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Notification kinds generated by transfer transitions and new messages.
const (
	NotificationCaseRequested = "case_requested"
	NotificationCaseAccepted  = "case_accepted"
	NotificationCaseRejected  = "case_rejected"
	NotificationCaseCancelled = "case_cancelled"
	NotificationCaseCompleted = "case_completed"
	NotificationNewMessage    = "new_message"
)

// Notification is an event surfaced to an actor's dashboard via polling.
// Delivery is best-effort: an actor that never polls again never sees it.
type Notification struct {
	gorm.Model

	NotificationID string `json:"notification_id" gorm:"uniqueIndex"`
	RecipientID    string `json:"recipient_id" gorm:"index"`
	Kind           string `json:"kind"`
	TransferID     string `json:"transfer_id,omitempty"`
	Body           string `json:"body"`
	IsRead         bool   `json:"is_read" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate NotificationID
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("NT%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}
