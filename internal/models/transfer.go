package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Transfer represents a client's request to engage a specific
// professional. It is server-owned; both actors observe it by polling
// and never merge partial updates locally.
type Transfer struct {
	gorm.Model

	TransferID     string `json:"transfer_id" gorm:"uniqueIndex"`
	ClientID       string `json:"client_id" gorm:"index"`
	ProfessionalID string `json:"professional_id" gorm:"index"`

	CaseSummary   string `json:"case_summary"`
	ClientMessage string `json:"client_message"`

	// Contact and consent captured at submission
	ContactName    string `json:"contact_name"`
	ContactChannel string `json:"contact_channel"`
	Availability   string `json:"availability"`
	ShareHistory   bool   `json:"share_history"`
	ShareContact   bool   `json:"share_contact"`

	Status               string  `json:"status"`
	ProfessionalResponse string  `json:"professional_response"`
	AgreedTerms          *string `json:"agreed_terms,omitempty"`
	CancelledBy          string  `json:"cancelled_by,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Transfer status constants
const (
	TransferStatusPending    = "pending"
	TransferStatusAccepted   = "accepted"
	TransferStatusInProgress = "in_progress"
	TransferStatusCompleted  = "completed"
	TransferStatusRejected   = "rejected"
	TransferStatusCancelled  = "cancelled"
)

// Availability preference constants
const (
	AvailabilityImmediate = "immediate"
	AvailabilityNextDay   = "nextDay"
	AvailabilityAnytime   = "anytime"
)

// BeforeCreate hook to auto-generate TransferID
func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.TransferID == "" {
		t.TransferID = fmt.Sprintf("TF%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	if t.Status == "" {
		t.Status = TransferStatusPending
	}
	if t.Availability == "" {
		t.Availability = AvailabilityAnytime
	}
	return nil
}

// IsTerminal reports whether no further transitions are permitted.
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferStatusCompleted ||
		t.Status == TransferStatusRejected ||
		t.Status == TransferStatusCancelled
}

// IsActive reports whether the conversation channel is open.
func (t *Transfer) IsActive() bool {
	return t.Status == TransferStatusInProgress
}

// Involves reports whether the given account participates in the
// transfer.
func (t *Transfer) Involves(accountID string) bool {
	return t.ClientID == accountID || t.ProfessionalID == accountID
}

// CounterpartOf returns the other participant's account ID.
func (t *Transfer) CounterpartOf(accountID string) string {
	if t.ClientID == accountID {
		return t.ProfessionalID
	}
	return t.ClientID
}

// TransferSubmission is the payload for creating a transfer from a
// completed hand-off draft.
type TransferSubmission struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
	CaseSummary    string `json:"case_summary"`
	ClientMessage  string `json:"client_message"`
	ContactName    string `json:"contact_name" validate:"required"`
	ContactChannel string `json:"contact_channel" validate:"required"`
	Availability   string `json:"availability"`
	ShareHistory   bool   `json:"share_history"`
	ShareContact   bool   `json:"share_contact"`
}
