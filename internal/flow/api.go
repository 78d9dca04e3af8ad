// Package flow implements the client-side core of the hand-off
// workflow: the anonymous question gate, the identity context, the
// professional hand-off stepper and the polling synchronizers. It is
// transport-agnostic; everything talks to the server through the
// Backend interface.
package flow

import (
	"github.com/lexlink/lexlink-backend/internal/models"
)

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token    string          `json:"token"`
	Identity *models.Account `json:"identity"`
}

// IdentitySnapshot is the server's view of the current identity,
// including any suspended hand-off draft awaiting resumption.
type IdentitySnapshot struct {
	Identity         *models.Account      `json:"identity"`
	PendingSelection *models.HandoffDraft `json:"pending_selection"`
}

// ProfessionalQuery holds directory search criteria.
type ProfessionalQuery struct {
	Specialty  string
	City       string
	SearchTerm string
	Page       int
}

// ProfessionalPage is one page of directory results. Items is never
// nil.
type ProfessionalPage struct {
	Items []*models.Account `json:"items"`
	Total int64             `json:"total"`
}

// NotificationPage is one page of the notification feed.
type NotificationPage struct {
	Items       []*models.Notification `json:"items"`
	Total       int64                  `json:"total"`
	UnreadCount int64                  `json:"unread_count"`
}

// QuestionReply is the assistant's answer plus quota hints for
// anonymous callers.
type QuestionReply struct {
	Answer        string `json:"answer"`
	GuestToken    string `json:"guest_token,omitempty"`
	QuestionsUsed int    `json:"questions_used,omitempty"`
	QuestionLimit int    `json:"question_limit,omitempty"`
}

// Backend is the boundary contract the flow core consumes. Errors
// cross it classified (see apperr): StateConflict and AuthExpired must
// arrive verbatim because the recovery action differs per kind.
type Backend interface {
	// Authentication boundary
	Register(reg *models.Registration) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Me(token string) (*IdentitySnapshot, error)
	SavePendingSelection(token string, draft *models.HandoffDraft) error
	ClearPendingSelection(token string) error

	// Directory
	SearchProfessionals(query ProfessionalQuery) (*ProfessionalPage, error)

	// Transfer lifecycle
	CreateTransfer(token string, sub *models.TransferSubmission) (*models.Transfer, error)
	ListTransfers(token string) ([]*models.Transfer, error)
	GetTransfer(token, transferID string) (*models.Transfer, error)
	AcceptTransfer(token, transferID, response string, agreedTerms *string) (*models.Transfer, error)
	RejectTransfer(token, transferID, response string) (*models.Transfer, error)
	CancelTransfer(token, transferID string) (*models.Transfer, error)
	CompleteTransfer(token, transferID string) (*models.Transfer, error)

	// Conversation
	FetchMessages(token, transferID string) ([]*models.Message, error)
	SendMessage(token, transferID string, sub *models.MessageSubmission) (*models.Message, error)
	MarkMessagesRead(token, transferID string) error

	// Notifications
	Notifications(token string, page int) (*NotificationPage, error)
	UnreadNotificationCount(token string) (int64, error)

	// Questions
	AskQuestion(token, guestToken, question string) (*QuestionReply, error)
}
