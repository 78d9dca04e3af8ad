package flow

import (
	"strings"
	"sync"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// StepperState is the hand-off stepper's position.
type StepperState string

const (
	StateBrowsing        StepperState = "browsing"
	StateSelecting       StepperState = "selecting"
	StateAwaitingConsent StepperState = "awaiting_consent"
	StateAwaitingAuth    StepperState = "awaiting_auth"
	StateSubmitting      StepperState = "submitting"
	StateConfirmed       StepperState = "confirmed"
	StateFailed          StepperState = "failed"
)

// GenericSpecialty is used when the topic hint is empty or matches
// nothing; the hint is advisory only.
const GenericSpecialty = "general"

// HandoffStepper drives professional selection, consent capture and
// submission. When authentication interrupts the flow, the draft is
// parked on the identity context and the stepper resumes exactly where
// it left off once the actor signs in. Nothing is persisted server-side
// before Submitting, so cancelling earlier has no side effects.
type HandoffStepper struct {
	backend  Backend
	identity *IdentityContext

	mu            sync.Mutex
	state         StepperState
	draft         *models.HandoffDraft
	professionals []*models.Account
	transferID    string
	lastErr       error
}

// NewHandoffStepper creates a stepper and wires it to identity changes
// so a successful authentication resumes a suspended flow.
func NewHandoffStepper(backend Backend, identity *IdentityContext) *HandoffStepper {
	s := &HandoffStepper{
		backend:  backend,
		identity: identity,
		state:    StateBrowsing,
	}
	identity.Subscribe(s.onIdentityChange)
	return s
}

// State returns the current stepper state.
func (s *HandoffStepper) State() StepperState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the in-progress draft, nil when none.
func (s *HandoffStepper) Draft() *models.HandoffDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	copied := *s.draft
	return &copied
}

// Professionals returns the currently presented list.
func (s *HandoffStepper) Professionals() []*models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Account{}, s.professionals...)
}

// TransferID returns the created transfer's ID after confirmation.
func (s *HandoffStepper) TransferID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transferID
}

// LastError returns the error that moved the stepper to Failed.
func (s *HandoffStepper) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Open starts a new hand-off from the matching surface. The topic hint
// narrows the directory search and falls back to the generic category
// when it matches nothing.
func (s *HandoffStepper) Open(topicHint string) error {
	s.mu.Lock()
	switch s.state {
	case StateBrowsing, StateConfirmed, StateFailed:
	default:
		state := s.state
		s.mu.Unlock()
		return apperr.Newf(apperr.KindStateConflict, "cannot open a new hand-off from state %q", state)
	}
	s.mu.Unlock()

	hint := strings.TrimSpace(topicHint)
	specialty := hint
	if specialty == "" {
		specialty = GenericSpecialty
	}

	page, err := s.backend.SearchProfessionals(ProfessionalQuery{Specialty: specialty})
	if err != nil {
		return err
	}
	if len(page.Items) == 0 && specialty != GenericSpecialty {
		page, err = s.backend.SearchProfessionals(ProfessionalQuery{Specialty: GenericSpecialty})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.state = StateSelecting
	s.draft = &models.HandoffDraft{TopicHint: hint}
	s.professionals = page.Items
	s.transferID = ""
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Select picks one professional from the presented list. Switching to a
// different professional while consent is open clears the consent
// fields so they get re-confirmed. An anonymous actor is suspended for
// authentication with the draft parked on the identity.
func (s *HandoffStepper) Select(professionalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelecting && s.state != StateAwaitingConsent {
		return apperr.Newf(apperr.KindStateConflict, "cannot select a professional from state %q", s.state)
	}

	found := false
	for _, p := range s.professionals {
		if p.AccountID == professionalID {
			found = true
			break
		}
	}
	if !found {
		return apperr.New(apperr.KindValidation, "professional is not in the presented list")
	}

	if s.state == StateAwaitingConsent && s.draft.SelectedProfessionalID != professionalID {
		s.draft.ClearConsent()
	}
	s.draft.SelectedProfessionalID = professionalID

	if s.identity.Actor().Anonymous() {
		s.state = StateAwaitingAuth
		s.identity.SetPendingSelection(s.draft)
		return nil
	}

	s.state = StateAwaitingConsent
	return nil
}

// SetCaseSummary records the case description on the draft.
func (s *HandoffStepper) SetCaseSummary(summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return apperr.New(apperr.KindStateConflict, "no hand-off in progress")
	}
	s.draft.CaseSummary = summary
	return nil
}

// SetContact records the consent-step contact fields.
func (s *HandoffStepper) SetContact(name, channel, availability string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingConsent {
		return apperr.Newf(apperr.KindStateConflict, "cannot enter contact details from state %q", s.state)
	}
	s.draft.ContactName = name
	s.draft.ContactChannel = channel
	s.draft.Availability = availability
	return nil
}

// SetConsent records the sharing checkboxes. They default to unchecked
// and govern what is shared, not whether the request is sent.
func (s *HandoffStepper) SetConsent(shareHistory, shareContact bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingConsent {
		return apperr.Newf(apperr.KindStateConflict, "cannot set consent from state %q", s.state)
	}
	s.draft.ShareHistory = shareHistory
	s.draft.ShareContact = shareContact
	return nil
}

// AbandonAuth handles a dismissed sign-in prompt: back to Selecting
// with the draft intact so the actor is not forced to re-pick.
func (s *HandoffStepper) AbandonAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingAuth {
		return apperr.Newf(apperr.KindStateConflict, "not awaiting authentication in state %q", s.state)
	}
	s.state = StateSelecting
	return nil
}

// Submit dispatches the draft as a transfer request. Once dispatched
// the actor waits for Confirmed or Failed; there is no automatic retry
// because a duplicate submission has side effects.
func (s *HandoffStepper) Submit() error {
	s.mu.Lock()
	if s.state != StateAwaitingConsent && s.state != StateFailed {
		state := s.state
		s.mu.Unlock()
		return apperr.Newf(apperr.KindStateConflict, "cannot submit from state %q", state)
	}
	if !s.draft.ConsentComplete() {
		s.mu.Unlock()
		return apperr.New(apperr.KindValidation, "contact name and contact channel are required")
	}

	submission := s.draft.Submission()
	s.state = StateSubmitting
	s.mu.Unlock()

	transfer, err := s.backend.CreateTransfer(s.identity.Token(), &submission)

	if err != nil {
		if apperr.IsAuthExpired(err) {
			// Same path as the original auth interruption: park the
			// draft and wait for a fresh sign-in.
			s.mu.Lock()
			s.state = StateAwaitingAuth
			draft := s.draft
			s.mu.Unlock()

			s.identity.SetPendingSelection(draft)
			s.identity.HandleAuthExpired()
			return err
		}
		s.mu.Lock()
		s.state = StateFailed
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateConfirmed
	s.transferID = transfer.TransferID
	s.draft = nil
	s.lastErr = nil
	s.mu.Unlock()

	s.identity.ClearPendingSelection()
	return nil
}

// Cancel abandons the flow. Valid any time before Submitting; nothing
// has been persisted server-side yet, so there are no side effects.
func (s *HandoffStepper) Cancel() error {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return apperr.New(apperr.KindStateConflict, "cannot cancel while the submission is in flight")
	}
	s.state = StateBrowsing
	s.draft = nil
	s.professionals = nil
	s.transferID = ""
	s.lastErr = nil
	s.mu.Unlock()

	s.identity.ClearPendingSelection()
	return nil
}

// onIdentityChange resumes a suspended flow after a successful
// authentication: the parked draft is reattached and the stepper
// returns to the consent step with the selection preserved.
func (s *HandoffStepper) onIdentityChange(actor Actor) {
	if actor.Anonymous() {
		return
	}

	draft := s.identity.PendingSelection()
	if draft == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingAuth {
		return
	}
	s.draft = draft
	s.state = StateAwaitingConsent
}
