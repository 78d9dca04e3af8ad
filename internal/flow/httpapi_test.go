package flow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

func TestHTTPBackendPropagatesErrorKinds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "a request to this professional is already pending",
			"kind":  "state_conflict",
		})
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	_, err := backend.CreateTransfer("tok-1", &models.TransferSubmission{ProfessionalID: "PR00001"})
	require.Error(t, err)
	assert.True(t, apperr.IsStateConflict(err))
	assert.Equal(t, "a request to this professional is already pending", err.Error())
}

func TestHTTPBackendMapsStatusWithoutKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	_, err := backend.Me("stale-token")
	require.Error(t, err)
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestHTTPBackendUnreachableServerIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	backend := NewHTTPBackend(server.URL)
	_, err := backend.ListTransfers("tok-1")
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))
}

func TestHTTPBackendSendsCredentials(t *testing.T) {
	var gotAuth, gotGuest string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotGuest = r.Header.Get("X-Guest-Token")
		json.NewEncoder(w).Encode(QuestionReply{Answer: "hello"})
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)
	reply, err := backend.AskQuestion("tok-1", "GS-abc", "anyone there?")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Answer)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "GS-abc", gotGuest)
}

func TestHTTPBackendDecodesEnvelopes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transfers":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"transfers": []*models.Transfer{{TransferID: "TF00001", Status: models.TransferStatusPending}},
				"count":     1,
			})
		case "/api/notifications/unread-count":
			json.NewEncoder(w).Encode(map[string]int64{"unread_count": 3})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL)

	transfers, err := backend.ListTransfers("tok-1")
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, "TF00001", transfers[0].TransferID)

	unread, err := backend.UnreadNotificationCount("tok-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)
}
