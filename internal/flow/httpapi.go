package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// HTTPBackend implements Backend against the REST API.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend creates a backend client for the given base URL.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// do performs a request and maps failures back onto the error
// taxonomy, so StateConflict and AuthExpired cross the wire unchanged.
func (b *HTTPBackend) do(method, path, token, guestToken string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if guestToken != "" {
		req.Header.Set("X-Guest-Token", guestToken)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindTransientNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload apiError
		_ = json.NewDecoder(resp.Body).Decode(&payload)

		kind := apperr.Kind(payload.Kind)
		if kind == "" || kind == apperr.KindUnknown {
			kind = apperr.FromHTTPStatus(resp.StatusCode)
		}
		message := payload.Error
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return apperr.New(kind, message)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Authentication boundary

func (b *HTTPBackend) Register(reg *models.Registration) (*AuthResult, error) {
	var result AuthResult
	if err := b.do(http.MethodPost, "/api/auth/register", "", "", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) Login(email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := b.do(http.MethodPost, "/api/auth/login", "", "", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) Me(token string) (*IdentitySnapshot, error) {
	var snapshot IdentitySnapshot
	if err := b.do(http.MethodGet, "/api/auth/me", token, "", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (b *HTTPBackend) SavePendingSelection(token string, draft *models.HandoffDraft) error {
	return b.do(http.MethodPost, "/api/auth/pending-selection", token, "", draft, nil)
}

func (b *HTTPBackend) ClearPendingSelection(token string) error {
	return b.do(http.MethodDelete, "/api/auth/pending-selection", token, "", nil, nil)
}

// Directory

func (b *HTTPBackend) SearchProfessionals(query ProfessionalQuery) (*ProfessionalPage, error) {
	params := url.Values{}
	if query.Specialty != "" {
		params.Set("specialty", query.Specialty)
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.SearchTerm != "" {
		params.Set("q", query.SearchTerm)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}

	path := "/api/professionals"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page ProfessionalPage
	if err := b.do(http.MethodGet, path, "", "", nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []*models.Account{}
	}
	return &page, nil
}

// Transfer lifecycle

func (b *HTTPBackend) CreateTransfer(token string, sub *models.TransferSubmission) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := b.do(http.MethodPost, "/api/transfers", token, "", sub, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (b *HTTPBackend) ListTransfers(token string) ([]*models.Transfer, error) {
	var envelope struct {
		Transfers []*models.Transfer `json:"transfers"`
	}
	if err := b.do(http.MethodGet, "/api/transfers", token, "", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Transfers, nil
}

func (b *HTTPBackend) GetTransfer(token, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := b.do(http.MethodGet, "/api/transfers/"+transferID, token, "", nil, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (b *HTTPBackend) AcceptTransfer(token, transferID, response string, agreedTerms *string) (*models.Transfer, error) {
	payload := map[string]interface{}{"response": response}
	if agreedTerms != nil {
		payload["agreed_terms"] = *agreedTerms
	}
	var transfer models.Transfer
	if err := b.do(http.MethodPost, "/api/transfers/"+transferID+"/accept", token, "", payload, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (b *HTTPBackend) RejectTransfer(token, transferID, response string) (*models.Transfer, error) {
	payload := map[string]string{"response": response}
	var transfer models.Transfer
	if err := b.do(http.MethodPost, "/api/transfers/"+transferID+"/reject", token, "", payload, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (b *HTTPBackend) CancelTransfer(token, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := b.do(http.MethodPost, "/api/transfers/"+transferID+"/cancel", token, "", nil, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (b *HTTPBackend) CompleteTransfer(token, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := b.do(http.MethodPost, "/api/transfers/"+transferID+"/complete", token, "", nil, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// Conversation

func (b *HTTPBackend) FetchMessages(token, transferID string) ([]*models.Message, error) {
	var envelope struct {
		Messages []*models.Message `json:"messages"`
	}
	if err := b.do(http.MethodGet, "/api/transfers/"+transferID+"/messages", token, "", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Messages, nil
}

func (b *HTTPBackend) SendMessage(token, transferID string, sub *models.MessageSubmission) (*models.Message, error) {
	var message models.Message
	if err := b.do(http.MethodPost, "/api/transfers/"+transferID+"/messages", token, "", sub, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (b *HTTPBackend) MarkMessagesRead(token, transferID string) error {
	return b.do(http.MethodPost, "/api/transfers/"+transferID+"/messages/read", token, "", nil, nil)
}

// Notifications

func (b *HTTPBackend) Notifications(token string, page int) (*NotificationPage, error) {
	path := "/api/notifications"
	if page > 0 {
		path += "?page=" + strconv.Itoa(page)
	}
	var result NotificationPage
	if err := b.do(http.MethodGet, path, token, "", nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []*models.Notification{}
	}
	return &result, nil
}

func (b *HTTPBackend) UnreadNotificationCount(token string) (int64, error) {
	var envelope struct {
		UnreadCount int64 `json:"unread_count"`
	}
	if err := b.do(http.MethodGet, "/api/notifications/unread-count", token, "", nil, &envelope); err != nil {
		return 0, err
	}
	return envelope.UnreadCount, nil
}

// Questions

func (b *HTTPBackend) AskQuestion(token, guestToken, question string) (*QuestionReply, error) {
	payload := map[string]string{"question": question}
	var reply QuestionReply
	if err := b.do(http.MethodPost, "/api/questions", token, guestToken, payload, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
