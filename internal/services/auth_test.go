package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

func newAuthService() (*AuthService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(store, tokens), store
}

func TestAuthRegisterLoginRoundTrip(t *testing.T) {
	auth, _ := newAuthService()

	account, token, err := auth.Register(&models.Registration{
		Email:    "Ana@Example.com",
		Password: "secret123",
		Name:     "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, account.Role)
	assert.Equal(t, "ana@example.com", account.Email)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret123", account.PasswordHash, "password is never stored in the clear")

	resolved, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, resolved.AccountID)

	loggedIn, loginToken, err := auth.Login("ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, loggedIn.AccountID)
	assert.NotEmpty(t, loginToken)
	assert.NotNil(t, loggedIn.LastActiveAt)
}

func TestAuthRegisterValidation(t *testing.T) {
	auth, _ := newAuthService()

	_, _, err := auth.Register(&models.Registration{Email: "ana@example.com", Password: "secret123"})
	assert.True(t, apperr.IsValidation(err), "name is required")

	_, _, err = auth.Register(&models.Registration{
		Email:    "bruno@example.com",
		Password: "secret123",
		Name:     "Bruno",
		Role:     models.RoleProfessional,
	})
	assert.True(t, apperr.IsValidation(err), "professionals must declare a specialty")

	_, _, err = auth.Register(&models.Registration{
		Email:    "eve@example.com",
		Password: "secret123",
		Name:     "Eve",
		Role:     "admin",
	})
	assert.True(t, apperr.IsValidation(err), "unknown role")

	_, _, err = auth.Register(&models.Registration{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
	})
	require.NoError(t, err)
	_, _, err = auth.Register(&models.Registration{
		Email:    "ana@example.com",
		Password: "other456",
		Name:     "Ana Again",
	})
	assert.True(t, apperr.IsValidation(err), "duplicate email")
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newAuthService()

	_, _, err := auth.Register(&models.Registration{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
	})
	require.NoError(t, err)

	_, _, err = auth.Login("ana@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "invalid email or password", err.Error())

	// Unknown accounts answer identically so emails cannot be probed.
	_, _, err = auth.Login("ghost@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestAuthAuthenticateRejectsBadTokens(t *testing.T) {
	auth, _ := newAuthService()

	_, err := auth.Authenticate("not-a-token")
	require.Error(t, err)
	assert.True(t, apperr.IsAuthExpired(err))

	expired := NewTokenService("test-secret", -time.Minute)
	token, err := expired.Issue(&models.Account{AccountID: "CL00001", Role: models.RoleClient})
	require.NoError(t, err)

	_, err = auth.Authenticate(token)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestAuthTokenSurvivesRoleChecks(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	token, err := tokens.Issue(&models.Account{AccountID: "PR00001", Role: models.RoleProfessional})
	require.NoError(t, err)

	accountID, role, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "PR00001", accountID)
	assert.Equal(t, models.RoleProfessional, role)

	// A token signed with a different secret is dead on arrival.
	other := NewTokenService("other-secret", time.Hour)
	_, _, err = other.Verify(token)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestAuthPendingSelectionLifecycle(t *testing.T) {
	auth, store := newAuthService()

	account, _, err := auth.Register(&models.Registration{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
	})
	require.NoError(t, err)

	draft := &models.HandoffDraft{SelectedProfessionalID: "PR00001", TopicHint: "family"}
	require.NoError(t, auth.SavePendingSelection(account, draft))

	stored, err := store.GetAccount(account.AccountID)
	require.NoError(t, err)
	decoded, err := models.DecodeDraft(stored.PendingSelection)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, "PR00001", decoded.SelectedProfessionalID)

	// Saving the identical draft again changes nothing.
	require.NoError(t, auth.SavePendingSelection(account, draft))

	require.NoError(t, auth.ClearPendingSelection(account))
	stored, err = store.GetAccount(account.AccountID)
	require.NoError(t, err)
	assert.Empty(t, stored.PendingSelection)

	// Clearing an empty selection is a no-op, not an error.
	require.NoError(t, auth.ClearPendingSelection(account))

	err = auth.SavePendingSelection(account, nil)
	assert.True(t, apperr.IsValidation(err))
}
