package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

func TestIdentityLoginSetsActorAndToken(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)
	require.True(t, identity.Actor().Anonymous())

	backend.On("Login", "ana@example.com", "secret123").Return(&AuthResult{
		Token:    "tok-1",
		Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
	}, nil)

	require.NoError(t, identity.Login("ana@example.com", "secret123"))
	assert.Equal(t, "tok-1", identity.Token())
	assert.Equal(t, "CL00001", identity.Actor().ID)
	assert.False(t, identity.Actor().Anonymous())
}

func TestIdentityLogoutWinsOverInFlightLogin(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	// The logout lands while the login request is still in flight; the
	// stale completion must be discarded.
	backend.On("Login", "ana@example.com", "secret123").
		Run(func(args mock.Arguments) { identity.Logout() }).
		Return(&AuthResult{
			Token:    "tok-1",
			Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
		}, nil)

	err := identity.Login("ana@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, apperr.IsStateConflict(err))
	assert.Empty(t, identity.Token())
	assert.True(t, identity.Actor().Anonymous())
}

func TestIdentityLogoutPreservesPendingSelection(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	identity.SetPendingSelection(&models.HandoffDraft{SelectedProfessionalID: "PR00001"})
	identity.Logout()

	parked := identity.PendingSelection()
	require.NotNil(t, parked)
	assert.Equal(t, "PR00001", parked.SelectedProfessionalID)
}

func TestIdentityAuthExpiredPreservesPendingSelection(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	backend.On("Login", "ana@example.com", "secret123").Return(&AuthResult{
		Token:    "tok-1",
		Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
	}, nil)
	require.NoError(t, identity.Login("ana@example.com", "secret123"))

	backend.On("SavePendingSelection", "tok-1", mock.AnythingOfType("*models.HandoffDraft")).Return(nil)
	identity.SetPendingSelection(&models.HandoffDraft{SelectedProfessionalID: "PR00001"})

	identity.HandleAuthExpired()
	assert.True(t, identity.Actor().Anonymous())
	assert.Empty(t, identity.Token())

	parked := identity.PendingSelection()
	require.NotNil(t, parked)
	assert.Equal(t, "PR00001", parked.SelectedProfessionalID)
}

func TestIdentitySubscribersSeeEveryChange(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	var seen []string
	identity.Subscribe(func(actor Actor) { seen = append(seen, actor.Role) })

	backend.On("Login", "ana@example.com", "secret123").Return(&AuthResult{
		Token:    "tok-1",
		Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
	}, nil)
	require.NoError(t, identity.Login("ana@example.com", "secret123"))
	identity.Logout()

	assert.Equal(t, []string{models.RoleClient, models.RoleAnonymous}, seen)
}

func TestIdentityValidateAdoptsServerPendingSelection(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	backend.On("Login", "ana@example.com", "secret123").Return(&AuthResult{
		Token:    "tok-1",
		Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
	}, nil)
	require.NoError(t, identity.Login("ana@example.com", "secret123"))

	backend.On("Me", "tok-1").Return(&IdentitySnapshot{
		Identity:         &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
		PendingSelection: &models.HandoffDraft{SelectedProfessionalID: "PR00003"},
	}, nil)

	require.NoError(t, identity.Validate())

	parked := identity.PendingSelection()
	require.NotNil(t, parked)
	assert.Equal(t, "PR00003", parked.SelectedProfessionalID)
}

func TestIdentityValidateExpiredTokenLogsOut(t *testing.T) {
	backend := new(MockBackend)
	identity := NewIdentityContext(backend)

	backend.On("Login", "ana@example.com", "secret123").Return(&AuthResult{
		Token:    "tok-1",
		Identity: &models.Account{AccountID: "CL00001", Name: "Ana", Role: models.RoleClient},
	}, nil)
	require.NoError(t, identity.Login("ana@example.com", "secret123"))

	backend.On("Me", "tok-1").
		Return(nil, apperr.New(apperr.KindAuthExpired, "credential token is no longer valid"))

	err := identity.Validate()
	require.Error(t, err)
	assert.True(t, apperr.IsAuthExpired(err))
	assert.True(t, identity.Actor().Anonymous())
	assert.Empty(t, identity.Token())
}
