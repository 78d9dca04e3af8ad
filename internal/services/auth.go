package services

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

// AuthService handles registration, login and token validation.
type AuthService struct {
	store  storage.Store
	tokens *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(store storage.Store, tokens *TokenService) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(reg *models.Registration) (*models.Account, string, error) {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" || strings.TrimSpace(reg.Name) == "" {
		return nil, "", apperr.New(apperr.KindValidation, "email, password and name are required")
	}

	role := reg.Role
	switch role {
	case "", models.RoleClient:
		role = models.RoleClient
	case models.RoleProfessional:
		if strings.TrimSpace(reg.Specialty) == "" {
			return nil, "", apperr.New(apperr.KindValidation, "professionals must declare a specialty")
		}
	default:
		return nil, "", apperr.Newf(apperr.KindValidation, "unknown role %q", reg.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	account := &models.Account{
		Email:        reg.Email,
		Name:         strings.TrimSpace(reg.Name),
		PasswordHash: string(hash),
		Role:         role,
		Specialty:    strings.TrimSpace(reg.Specialty),
		City:         strings.TrimSpace(reg.City),
		BarNumber:    strings.TrimSpace(reg.BarNumber),
	}

	account, err = s.store.CreateAccount(account)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, "", err
	}

	log.Printf("Account registered: %s (%s)", account.AccountID, account.Role)
	return account, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *AuthService) Login(email, password string) (*models.Account, string, error) {
	account, err := s.store.GetAccountByEmail(email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, "", apperr.New(apperr.KindValidation, "invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.New(apperr.KindValidation, "invalid email or password")
	}

	now := time.Now()
	account.LastActiveAt = &now
	if err := s.store.UpdateAccount(account); err != nil {
		log.Printf("Failed to record login time for %s: %v", account.AccountID, err)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Authenticate resolves a bearer token to its account.
func (s *AuthService) Authenticate(token string) (*models.Account, error) {
	accountID, _, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(accountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.New(apperr.KindAuthExpired, "credential token is no longer valid")
		}
		return nil, err
	}
	return account, nil
}

// SavePendingSelection attaches a suspended hand-off draft to the
// account. Saving the same draft again is a no-op, so the suspension
// transition stays idempotent.
func (s *AuthService) SavePendingSelection(account *models.Account, draft *models.HandoffDraft) error {
	if draft == nil {
		return apperr.New(apperr.KindValidation, "draft is required")
	}
	encoded, err := draft.Encode()
	if err != nil {
		return err
	}
	if account.PendingSelection == encoded {
		return nil
	}
	account.PendingSelection = encoded
	return s.store.UpdateAccount(account)
}

// ClearPendingSelection removes the stored draft after explicit
// resumption or cancellation.
func (s *AuthService) ClearPendingSelection(account *models.Account) error {
	if account.PendingSelection == "" {
		return nil
	}
	account.PendingSelection = ""
	return s.store.UpdateAccount(account)
}
