package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// Assistant is the opaque text-completion boundary. The real response
// engine lives elsewhere; this service only needs something that turns
// a question into an answer.
type Assistant interface {
	Answer(question string) (string, error)
}

// StaticAssistant is the default responder used when no engine is wired
// in. It acknowledges the question and points at the directory.
type StaticAssistant struct{}

func (StaticAssistant) Answer(question string) (string, error) {
	return "Thanks for your question. A general orientation will follow shortly; " +
		"for a binding answer, consider handing your case to one of our verified professionals.", nil
}

// QuestionService answers visitor questions and keeps the per-guest
// usage record. The record is a UX hint only: the endpoint answers
// whether or not the client-side quota was bypassed, and wiping the
// guest token just starts a fresh count.
type QuestionService struct {
	store      storage.Store
	assistant  Assistant
	guestLimit int
	guestTTL   time.Duration
}

// NewQuestionService creates a new question service
func NewQuestionService(store storage.Store, assistant Assistant, guestLimit int) *QuestionService {
	if assistant == nil {
		assistant = StaticAssistant{}
	}
	if guestLimit <= 0 {
		guestLimit = 5
	}
	return &QuestionService{
		store:      store,
		assistant:  assistant,
		guestLimit: guestLimit,
		guestTTL:   30 * 24 * time.Hour,
	}
}

// GuestLimit returns the advertised anonymous question limit.
func (s *QuestionService) GuestLimit() int {
	return s.guestLimit
}

// QuestionResult is the answer plus quota hints for anonymous callers.
type QuestionResult struct {
	Answer        string `json:"answer"`
	GuestToken    string `json:"guest_token,omitempty"`
	QuestionsUsed int    `json:"questions_used,omitempty"`
	QuestionLimit int    `json:"question_limit,omitempty"`
}

// Ask answers a question. Authenticated actors are never counted; for
// guests the count is recorded after the responder has accepted the
// question, so a failed dispatch costs no quota.
func (s *QuestionService) Ask(actor *models.Account, guestToken, question string) (*QuestionResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.New(apperr.KindValidation, "question text is required")
	}

	answer, err := s.assistant.Answer(question)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransientNetwork, "the assistant is unavailable", err)
	}

	result := &QuestionResult{Answer: answer}

	if actor != nil {
		return result, nil
	}

	session, err := s.recordGuestUsage(guestToken)
	if err != nil {
		// Usage tracking is advisory; the answer still stands.
		log.Printf("Failed to record guest usage: %v", err)
		return result, nil
	}

	result.GuestToken = session.Token
	result.QuestionsUsed = session.QuestionCount
	result.QuestionLimit = s.guestLimit
	return result, nil
}

func (s *QuestionService) recordGuestUsage(guestToken string) (*models.GuestSession, error) {
	if guestToken != "" {
		session, err := s.store.GetGuestSession(guestToken)
		if err == nil && !session.Expired() {
			session.QuestionCount++
			session.ExpiresAt = time.Now().Add(s.guestTTL)
			if err := s.store.UpdateGuestSession(session); err != nil {
				return nil, err
			}
			return session, nil
		}
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}

	session := &models.GuestSession{
		Token:         fmt.Sprintf("GS-%s", uuid.NewString()),
		QuestionCount: 1,
		ExpiresAt:     time.Now().Add(s.guestTTL),
	}
	return s.store.CreateGuestSession(session)
}
