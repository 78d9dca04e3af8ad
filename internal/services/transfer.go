package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// TransferService owns the server-authoritative transfer lifecycle.
// Clients and professionals only observe it and request transitions;
// every transition is validated against the current state and moves the
// request forward along one of the two permitted paths.
type TransferService struct {
	store storage.Store
}

// NewTransferService creates a new transfer service
func NewTransferService(store storage.Store) *TransferService {
	return &TransferService{store: store}
}

// Create submits a new transfer from a completed hand-off draft. The
// storage layer rejects a second pending request to the same
// professional with a state conflict rather than duplicating it.
func (s *TransferService) Create(client *models.Account, sub *models.TransferSubmission) (*models.Transfer, error) {
	if client.Role != models.RoleClient {
		return nil, apperr.New(apperr.KindValidation, "only clients can submit transfer requests")
	}
	if strings.TrimSpace(sub.ContactName) == "" || strings.TrimSpace(sub.ContactChannel) == "" {
		return nil, apperr.New(apperr.KindValidation, "contact name and contact channel are required")
	}

	professional, err := s.store.GetAccount(sub.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !professional.IsProfessional() {
		return nil, apperr.New(apperr.KindValidation, "selected account is not a professional")
	}

	// Fast answer for the common duplicate; CreateTransfer re-checks
	// atomically so a concurrent submission cannot slip past this.
	pending, err := s.store.HasPendingTransfer(client.AccountID, professional.AccountID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.New(apperr.KindStateConflict, "a request to this professional is already pending")
	}

	transfer := &models.Transfer{
		ClientID:       client.AccountID,
		ProfessionalID: professional.AccountID,
		CaseSummary:    sub.CaseSummary,
		ClientMessage:  sub.ClientMessage,
		ContactName:    strings.TrimSpace(sub.ContactName),
		ContactChannel: strings.TrimSpace(sub.ContactChannel),
		Availability:   sub.Availability,
		ShareHistory:   sub.ShareHistory,
		ShareContact:   sub.ShareContact,
		Status:         models.TransferStatusPending,
	}

	transfer, err = s.store.CreateTransfer(transfer)
	if err != nil {
		return nil, err
	}

	s.notify(professional.AccountID, models.NotificationCaseRequested, transfer.TransferID,
		fmt.Sprintf("%s requested your help with a case", client.Name))

	log.Printf("Transfer %s created: %s -> %s", transfer.TransferID, client.AccountID, professional.AccountID)
	return transfer, nil
}

// Get returns a transfer visible to the given participant.
func (s *TransferService) Get(actor *models.Account, transferID string) (*models.Transfer, error) {
	transfer, err := s.store.GetTransfer(transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.Involves(actor.AccountID) {
		return nil, apperr.New(apperr.KindNotFound, "transfer not found")
	}
	return transfer, nil
}

// ListForActor returns the polling set for a dashboard: clients see all
// of their own requests, professionals see pending and active ones.
func (s *TransferService) ListForActor(actor *models.Account) ([]*models.Transfer, error) {
	if actor.IsProfessional() {
		return s.store.GetTransfersByProfessional(actor.AccountID, []string{
			models.TransferStatusPending,
			models.TransferStatusAccepted,
			models.TransferStatusInProgress,
		})
	}
	return s.store.GetTransfersByClient(actor.AccountID)
}

// Accept moves a pending transfer to in_progress. The accepted state is
// recorded first so optional agreed terms land before the conversation
// opens, then the request advances immediately. The transition is
// status-guarded in storage, so a concurrent second accept fails
// instead of overwriting the first response.
func (s *TransferService) Accept(professional *models.Account, transferID, response string, agreedTerms *string) (*models.Transfer, error) {
	transfer, err := s.ownedByProfessional(professional, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != models.TransferStatusPending {
		return nil, apperr.Newf(apperr.KindStateConflict, "cannot accept a transfer in state %q", transfer.Status)
	}

	now := time.Now()
	transfer, err = s.store.TransitionTransfer(transferID, models.TransferStatusPending, func(t *models.Transfer) {
		t.Status = models.TransferStatusAccepted
		t.ProfessionalResponse = response
		t.AgreedTerms = agreedTerms
		t.RespondedAt = &now
		t.AcceptedAt = &now
		t.Status = models.TransferStatusInProgress
	})
	if err != nil {
		return nil, err
	}

	s.notify(transfer.ClientID, models.NotificationCaseAccepted, transfer.TransferID,
		fmt.Sprintf("%s accepted your request", professional.Name))

	log.Printf("Transfer %s accepted by %s", transfer.TransferID, professional.AccountID)
	return transfer, nil
}

// Reject declines a pending transfer. Terminal; the client may submit a
// new request to a different professional afterwards.
func (s *TransferService) Reject(professional *models.Account, transferID, response string) (*models.Transfer, error) {
	transfer, err := s.ownedByProfessional(professional, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != models.TransferStatusPending {
		return nil, apperr.Newf(apperr.KindStateConflict, "cannot reject a transfer in state %q", transfer.Status)
	}

	now := time.Now()
	transfer, err = s.store.TransitionTransfer(transferID, models.TransferStatusPending, func(t *models.Transfer) {
		t.Status = models.TransferStatusRejected
		t.ProfessionalResponse = response
		t.RespondedAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.notify(transfer.ClientID, models.NotificationCaseRejected, transfer.TransferID,
		fmt.Sprintf("%s declined your request", professional.Name))

	log.Printf("Transfer %s rejected by %s", transfer.TransferID, professional.AccountID)
	return transfer, nil
}

// Cancel ends an in-progress transfer. Either participant may cancel;
// the counterpart is notified.
func (s *TransferService) Cancel(actor *models.Account, transferID string) (*models.Transfer, error) {
	transfer, err := s.Get(actor, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != models.TransferStatusInProgress {
		return nil, apperr.Newf(apperr.KindStateConflict, "cannot cancel a transfer in state %q", transfer.Status)
	}

	now := time.Now()
	transfer, err = s.store.TransitionTransfer(transferID, models.TransferStatusInProgress, func(t *models.Transfer) {
		t.Status = models.TransferStatusCancelled
		t.CancelledAt = &now
		t.CancelledBy = actor.AccountID
	})
	if err != nil {
		return nil, err
	}

	s.notify(transfer.CounterpartOf(actor.AccountID), models.NotificationCaseCancelled, transfer.TransferID,
		fmt.Sprintf("%s cancelled the case", actor.Name))

	log.Printf("Transfer %s cancelled by %s", transfer.TransferID, actor.AccountID)
	return transfer, nil
}

// Complete closes an in-progress transfer. The conversation becomes
// read-only afterwards.
func (s *TransferService) Complete(actor *models.Account, transferID string) (*models.Transfer, error) {
	transfer, err := s.Get(actor, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != models.TransferStatusInProgress {
		return nil, apperr.Newf(apperr.KindStateConflict, "cannot complete a transfer in state %q", transfer.Status)
	}

	now := time.Now()
	transfer, err = s.store.TransitionTransfer(transferID, models.TransferStatusInProgress, func(t *models.Transfer) {
		t.Status = models.TransferStatusCompleted
		t.CompletedAt = &now
	})
	if err != nil {
		return nil, err
	}

	if professional, err := s.store.GetAccount(transfer.ProfessionalID); err == nil {
		professional.RecordCase(professional.Rating)
		if err := s.store.UpdateAccount(professional); err != nil {
			log.Printf("Failed to update case count for %s: %v", professional.AccountID, err)
		}
	}

	s.notify(transfer.CounterpartOf(actor.AccountID), models.NotificationCaseCompleted, transfer.TransferID,
		"The case has been marked as completed")

	log.Printf("Transfer %s completed", transfer.TransferID)
	return transfer, nil
}

func (s *TransferService) ownedByProfessional(professional *models.Account, transferID string) (*models.Transfer, error) {
	if !professional.IsProfessional() {
		return nil, apperr.New(apperr.KindValidation, "only professionals can respond to transfer requests")
	}
	transfer, err := s.store.GetTransfer(transferID)
	if err != nil {
		return nil, err
	}
	if transfer.ProfessionalID != professional.AccountID {
		return nil, apperr.New(apperr.KindNotFound, "transfer not found")
	}
	return transfer, nil
}

func (s *TransferService) notify(recipientID, kind, transferID, body string) {
	_, err := s.store.CreateNotification(&models.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		TransferID:  transferID,
		Body:        body,
	})
	if err != nil {
		log.Printf("Failed to create %s notification for %s: %v", kind, recipientID, err)
	}
}
