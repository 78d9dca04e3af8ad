package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

type echoAssistant struct{}

func (echoAssistant) Answer(question string) (string, error) {
	return "echo: " + question, nil
}

type brokenAssistant struct{}

func (brokenAssistant) Answer(string) (string, error) {
	return "", errors.New("engine offline")
}

func TestQuestionAnonymousUsageIsCounted(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewQuestionService(store, echoAssistant{}, 5)

	first, err := service.Ask(nil, "", "what is a retainer?")
	require.NoError(t, err)
	assert.Equal(t, "echo: what is a retainer?", first.Answer)
	assert.NotEmpty(t, first.GuestToken)
	assert.Equal(t, 1, first.QuestionsUsed)
	assert.Equal(t, 5, first.QuestionLimit)

	second, err := service.Ask(nil, first.GuestToken, "and a contingency fee?")
	require.NoError(t, err)
	assert.Equal(t, first.GuestToken, second.GuestToken)
	assert.Equal(t, 2, second.QuestionsUsed)
}

func TestQuestionAuthenticatedActorIsNotCounted(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewQuestionService(store, echoAssistant{}, 5)
	client, err := store.CreateAccount(&models.Account{
		Email: "ana@example.com",
		Name:  "Ana",
		Role:  models.RoleClient,
	})
	require.NoError(t, err)

	result, err := service.Ask(client, "", "what is a retainer?")
	require.NoError(t, err)
	assert.Empty(t, result.GuestToken)
	assert.Zero(t, result.QuestionsUsed)
}

func TestQuestionUnknownGuestTokenStartsFreshCount(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewQuestionService(store, echoAssistant{}, 5)

	result, err := service.Ask(nil, "GS-wiped-by-the-browser", "hello?")
	require.NoError(t, err)
	assert.NotEqual(t, "GS-wiped-by-the-browser", result.GuestToken)
	assert.Equal(t, 1, result.QuestionsUsed)
}

func TestQuestionValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewQuestionService(store, echoAssistant{}, 5)

	_, err := service.Ask(nil, "", "   ")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestQuestionAssistantFailureIsTransient(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewQuestionService(store, brokenAssistant{}, 5)

	_, err := service.Ask(nil, "", "anyone home?")
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))

	// A failed dispatch never creates or advances a guest session.
	working := NewQuestionService(store, echoAssistant{}, 5)
	result, err := working.Ask(nil, "", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, result.QuestionsUsed)
}
