package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexlink/lexlink-backend/internal/services"
	"github.com/lexlink/lexlink-backend/internal/storage"
)

func newTestApp() *fiber.App {
	store := storage.NewMemoryStore()
	tokens := services.NewTokenService("test-secret", time.Hour)
	auth := services.NewAuthService(store, tokens)
	transfers := services.NewTransferService(store)
	conversations := services.NewConversationService(store)
	questions := services.NewQuestionService(store, nil, 5)

	app := fiber.New()
	SetupRoutes(app, store, auth, transfers, conversations, questions)
	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func registerClient(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, payload := request(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     "Ana",
	})
	require.Equal(t, http.StatusCreated, status)
	return payload["token"].(string)
}

func registerProfessional(t *testing.T, app *fiber.App, email string) (token, accountID string) {
	t.Helper()
	status, payload := request(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret123",
		"name":      "Bruno",
		"role":      "professional",
		"specialty": "family",
	})
	require.Equal(t, http.StatusCreated, status)
	identity := payload["identity"].(map[string]interface{})
	return payload["token"].(string), identity["account_id"].(string)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	app := newTestApp()

	status, payload := request(t, app, http.MethodGet, "/api/transfers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, payload["error"])

	status, _ = request(t, app, http.MethodGet, "/api/transfers", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRoutesHandoffLifecycle(t *testing.T) {
	app := newTestApp()
	clientToken := registerClient(t, app, "ana@example.com")
	proToken, proID := registerProfessional(t, app, "bruno@example.com")

	// The directory lists the professional.
	status, payload := request(t, app, http.MethodGet, "/api/professionals?specialty=family", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, payload["total"])

	// Client submits the hand-off.
	submission := map[string]interface{}{
		"professional_id": proID,
		"case_summary":    "custody dispute",
		"contact_name":    "Ana",
		"contact_channel": "ana@example.com",
		"share_history":   true,
	}
	status, payload = request(t, app, http.MethodPost, "/api/transfers", clientToken, submission)
	require.Equal(t, http.StatusCreated, status)
	transferID := payload["transfer_id"].(string)
	assert.Equal(t, "pending", payload["status"])

	// A second request to the same professional answers 409.
	status, payload = request(t, app, http.MethodPost, "/api/transfers", clientToken, submission)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "state_conflict", payload["kind"])

	// The professional sees it and accepts.
	status, payload = request(t, app, http.MethodGet, "/api/transfers", proToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, payload["count"])

	acceptPath := fmt.Sprintf("/api/transfers/%s/accept", transferID)
	status, payload = request(t, app, http.MethodPost, acceptPath, proToken, map[string]string{
		"response":     "happy to help",
		"agreed_terms": "hourly rate as discussed",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "in_progress", payload["status"])

	status, payload = request(t, app, http.MethodPost, acceptPath, proToken, map[string]string{"response": "again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "state_conflict", payload["kind"])

	// Conversation opens both ways.
	messagePath := fmt.Sprintf("/api/transfers/%s/messages", transferID)
	status, _ = request(t, app, http.MethodPost, messagePath, clientToken, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = request(t, app, http.MethodPost, messagePath, proToken, map[string]string{"content": "hi there"})
	require.Equal(t, http.StatusCreated, status)

	status, payload = request(t, app, http.MethodGet, messagePath, clientToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, payload["count"])

	// Acceptance and the professional's reply both notified the client.
	status, payload = request(t, app, http.MethodGet, "/api/notifications/unread-count", clientToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, payload["unread_count"])

	// Completing closes the channel.
	status, payload = request(t, app, http.MethodPost, fmt.Sprintf("/api/transfers/%s/complete", transferID), proToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", payload["status"])

	status, payload = request(t, app, http.MethodPost, messagePath, clientToken, map[string]string{"content": "one more"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "state_conflict", payload["kind"])
}

func TestRoutesAnonymousQuestions(t *testing.T) {
	app := newTestApp()

	status, payload := request(t, app, http.MethodPost, "/api/questions", "", map[string]string{
		"question": "what is a retainer?",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, payload["answer"])
	assert.NotEmpty(t, payload["guest_token"])
	assert.EqualValues(t, 1, payload["questions_used"])
	assert.EqualValues(t, 5, payload["question_limit"])

	// Authenticated actors get no quota bookkeeping.
	token := registerClient(t, app, "ana@example.com")
	status, payload = request(t, app, http.MethodPost, "/api/questions", token, map[string]string{
		"question": "what is a contingency fee?",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, payload["answer"])
	assert.Nil(t, payload["guest_token"])
}

func TestRoutesPendingSelectionRoundTrip(t *testing.T) {
	app := newTestApp()
	token := registerClient(t, app, "ana@example.com")

	status, _ := request(t, app, http.MethodPost, "/api/auth/pending-selection", token, map[string]interface{}{
		"selected_professional_id": "PR00002",
		"topic_hint":               "family",
	})
	require.Equal(t, http.StatusOK, status)

	status, payload := request(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	pending := payload["pending_selection"].(map[string]interface{})
	assert.Equal(t, "PR00002", pending["selected_professional_id"])

	status, _ = request(t, app, http.MethodDelete, "/api/auth/pending-selection", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, payload = request(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, payload["pending_selection"])
}

func TestRoutesValidationStatus(t *testing.T) {
	app := newTestApp()
	clientToken := registerClient(t, app, "ana@example.com")
	_, proID := registerProfessional(t, app, "bruno@example.com")

	status, payload := request(t, app, http.MethodPost, "/api/transfers", clientToken, map[string]interface{}{
		"professional_id": proID,
		"case_summary":    "no contact details",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation", payload["kind"])
}
