package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// MemoryStore holds all data in memory for tests and local development
type MemoryStore struct {
	accounts      map[string]*models.Account
	guests        map[string]*models.GuestSession
	transfers     map[string]*models.Transfer
	messages      map[string]*models.Message
	notifications map[string]*models.Notification

	// Mutexes for thread safety
	accountMu  sync.RWMutex
	guestMu    sync.RWMutex
	transferMu sync.RWMutex
	messageMu  sync.RWMutex
	notifyMu   sync.RWMutex

	// Counters for ID generation
	accountCounter  int
	guestCounter    uint
	transferCounter int
	messageCounter  int
	notifyCounter   int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[string]*models.Account),
		guests:        make(map[string]*models.GuestSession),
		transfers:     make(map[string]*models.Transfer),
		messages:      make(map[string]*models.Message),
		notifications: make(map[string]*models.Notification),
	}
}

// Account operations

func (m *MemoryStore) CreateAccount(account *models.Account) (*models.Account, error) {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	email := strings.ToLower(strings.TrimSpace(account.Email))
	for _, existing := range m.accounts {
		if existing.Email == email {
			return nil, apperr.New(apperr.KindValidation, "email already registered")
		}
	}

	m.accountCounter++
	now := time.Now()

	prefix := "CL"
	if account.Role == models.RoleProfessional {
		prefix = "PR"
	}

	account.ID = uint(m.accountCounter)
	account.AccountID = fmt.Sprintf("%s%05d", prefix, m.accountCounter)
	account.Email = email
	if account.Rating == 0 {
		account.Rating = 5.0
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	m.accounts[account.AccountID] = account
	return account, nil
}

func (m *MemoryStore) GetAccount(accountID string) (*models.Account, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	account, exists := m.accounts[accountID]
	if !exists {
		return nil, apperr.New(apperr.KindNotFound, "account not found")
	}
	return account, nil
}

func (m *MemoryStore) GetAccountByEmail(email string) (*models.Account, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "account not found")
}

func (m *MemoryStore) UpdateAccount(account *models.Account) error {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	if _, exists := m.accounts[account.AccountID]; !exists {
		return apperr.New(apperr.KindNotFound, "account not found")
	}
	account.UpdatedAt = time.Now()
	m.accounts[account.AccountID] = account
	return nil
}

func (m *MemoryStore) SearchProfessionals(search *models.ProfessionalSearch) ([]*models.Account, int64, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	matches := []*models.Account{}
	for _, account := range m.accounts {
		if account.Role != models.RoleProfessional || !account.Available {
			continue
		}
		if search.Specialty != "" && !strings.EqualFold(account.Specialty, search.Specialty) {
			continue
		}
		if search.City != "" && !strings.EqualFold(account.City, search.City) {
			continue
		}
		if search.SearchTerm != "" {
			term := strings.ToLower(search.SearchTerm)
			if !strings.Contains(strings.ToLower(account.Name), term) &&
				!strings.Contains(strings.ToLower(account.Bio), term) &&
				!strings.Contains(strings.ToLower(account.Specialty), term) {
				continue
			}
		}
		matches = append(matches, account)
	}

	// Rating order stands in for the opaque scoring service
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Rating != matches[j].Rating {
			return matches[i].Rating > matches[j].Rating
		}
		return matches[i].AccountID < matches[j].AccountID
	})

	total := int64(len(matches))
	page, perPage := normalizePage(search.Page, search.PerPage)
	start := (page - 1) * perPage
	if start >= len(matches) {
		return []*models.Account{}, total, nil
	}
	end := start + perPage
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

// Guest session operations

func (m *MemoryStore) GetGuestSession(token string) (*models.GuestSession, error) {
	m.guestMu.RLock()
	defer m.guestMu.RUnlock()

	session, exists := m.guests[token]
	if !exists {
		return nil, apperr.New(apperr.KindNotFound, "guest session not found")
	}
	return session, nil
}

func (m *MemoryStore) CreateGuestSession(session *models.GuestSession) (*models.GuestSession, error) {
	m.guestMu.Lock()
	defer m.guestMu.Unlock()

	m.guestCounter++
	now := time.Now()
	session.ID = m.guestCounter
	session.CreatedAt = now
	session.UpdatedAt = now

	m.guests[session.Token] = session
	return session, nil
}

func (m *MemoryStore) UpdateGuestSession(session *models.GuestSession) error {
	m.guestMu.Lock()
	defer m.guestMu.Unlock()

	if _, exists := m.guests[session.Token]; !exists {
		return apperr.New(apperr.KindNotFound, "guest session not found")
	}
	session.UpdatedAt = time.Now()
	m.guests[session.Token] = session
	return nil
}

func (m *MemoryStore) DeleteExpiredGuestSessions() (int64, error) {
	m.guestMu.Lock()
	defer m.guestMu.Unlock()

	removed := int64(0)
	for token, session := range m.guests {
		if session.Expired() {
			delete(m.guests, token)
			removed++
		}
	}
	return removed, nil
}

// Transfer operations

func (m *MemoryStore) CreateTransfer(transfer *models.Transfer) (*models.Transfer, error) {
	m.transferMu.Lock()
	defer m.transferMu.Unlock()

	// At most one pending request per (client, professional) pair
	for _, existing := range m.transfers {
		if existing.ClientID == transfer.ClientID &&
			existing.ProfessionalID == transfer.ProfessionalID &&
			existing.Status == models.TransferStatusPending {
			return nil, apperr.New(apperr.KindStateConflict, "a request to this professional is already pending")
		}
	}

	m.transferCounter++
	now := time.Now()
	transfer.ID = uint(m.transferCounter)
	transfer.TransferID = fmt.Sprintf("TF%05d", m.transferCounter)
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusPending
	}
	if transfer.Availability == "" {
		transfer.Availability = models.AvailabilityAnytime
	}
	transfer.CreatedAt = now
	transfer.UpdatedAt = now

	stored := *transfer
	m.transfers[transfer.TransferID] = &stored
	return transfer, nil
}

func (m *MemoryStore) GetTransfer(transferID string) (*models.Transfer, error) {
	m.transferMu.RLock()
	defer m.transferMu.RUnlock()

	transfer, exists := m.transfers[transferID]
	if !exists {
		return nil, apperr.New(apperr.KindNotFound, "transfer not found")
	}
	copied := *transfer
	return &copied, nil
}

func (m *MemoryStore) GetTransfersByClient(clientID string) ([]*models.Transfer, error) {
	m.transferMu.RLock()
	defer m.transferMu.RUnlock()

	transfers := []*models.Transfer{}
	for _, transfer := range m.transfers {
		if transfer.ClientID == clientID {
			copied := *transfer
			transfers = append(transfers, &copied)
		}
	}
	sortTransfers(transfers)
	return transfers, nil
}

func (m *MemoryStore) GetTransfersByProfessional(professionalID string, statuses []string) ([]*models.Transfer, error) {
	m.transferMu.RLock()
	defer m.transferMu.RUnlock()

	wanted := map[string]bool{}
	for _, s := range statuses {
		wanted[s] = true
	}

	transfers := []*models.Transfer{}
	for _, transfer := range m.transfers {
		if transfer.ProfessionalID != professionalID {
			continue
		}
		if len(wanted) > 0 && !wanted[transfer.Status] {
			continue
		}
		copied := *transfer
		transfers = append(transfers, &copied)
	}
	sortTransfers(transfers)
	return transfers, nil
}

func (m *MemoryStore) HasPendingTransfer(clientID, professionalID string) (bool, error) {
	m.transferMu.RLock()
	defer m.transferMu.RUnlock()

	for _, transfer := range m.transfers {
		if transfer.ClientID == clientID &&
			transfer.ProfessionalID == professionalID &&
			transfer.Status == models.TransferStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) TransitionTransfer(transferID, fromStatus string, apply func(*models.Transfer)) (*models.Transfer, error) {
	m.transferMu.Lock()
	defer m.transferMu.Unlock()

	transfer, exists := m.transfers[transferID]
	if !exists {
		return nil, apperr.New(apperr.KindNotFound, "transfer not found")
	}
	// The guard and the mutation share the write lock, so a concurrent
	// transition that got here first makes this one fail.
	if transfer.Status != fromStatus {
		return nil, apperr.Newf(apperr.KindStateConflict, "transfer is no longer %q", fromStatus)
	}

	apply(transfer)
	transfer.UpdatedAt = time.Now()

	copied := *transfer
	return &copied, nil
}

// Message operations

func (m *MemoryStore) CreateMessage(message *models.Message) (*models.Message, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	m.messageCounter++
	now := time.Now()
	message.ID = uint(m.messageCounter)
	message.MessageID = fmt.Sprintf("MS%05d", m.messageCounter)
	message.CreatedAt = now
	message.UpdatedAt = now

	m.messages[message.MessageID] = message
	return message, nil
}

func (m *MemoryStore) GetMessagesByTransfer(transferID string) ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	messages := []*models.Message{}
	for _, message := range m.messages {
		if message.TransferID == transferID {
			messages = append(messages, message)
		}
	}

	// Server-determined order: CreatedAt, ID tiebreak
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (m *MemoryStore) MarkMessagesRead(transferID, readerRole string) (int64, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	marked := int64(0)
	for _, message := range m.messages {
		if message.TransferID == transferID && message.SenderRole != readerRole && !message.IsRead {
			message.IsRead = true
			message.UpdatedAt = time.Now()
			marked++
		}
	}
	return marked, nil
}

func (m *MemoryStore) CountUnreadMessages(transferID, readerRole string) (int64, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	count := int64(0)
	for _, message := range m.messages {
		if message.TransferID == transferID && message.SenderRole != readerRole && !message.IsRead {
			count++
		}
	}
	return count, nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(notification *models.Notification) (*models.Notification, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.notifyCounter++
	now := time.Now()
	notification.ID = uint(m.notifyCounter)
	notification.NotificationID = fmt.Sprintf("NT%05d", m.notifyCounter)
	notification.CreatedAt = now
	notification.UpdatedAt = now

	m.notifications[notification.NotificationID] = notification
	return notification, nil
}

func (m *MemoryStore) GetNotifications(recipientID string, page, perPage int) ([]*models.Notification, int64, error) {
	m.notifyMu.RLock()
	defer m.notifyMu.RUnlock()

	matches := []*models.Notification{}
	for _, notification := range m.notifications {
		if notification.RecipientID == recipientID {
			matches = append(matches, notification)
		}
	}

	// Newest first
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	total := int64(len(matches))
	page, perPage = normalizePage(page, perPage)
	start := (page - 1) * perPage
	if start >= len(matches) {
		return []*models.Notification{}, total, nil
	}
	end := start + perPage
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

func (m *MemoryStore) CountUnreadNotifications(recipientID string) (int64, error) {
	m.notifyMu.RLock()
	defer m.notifyMu.RUnlock()

	count := int64(0)
	for _, notification := range m.notifications {
		if notification.RecipientID == recipientID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) MarkNotificationRead(notificationID, recipientID string) error {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	notification, exists := m.notifications[notificationID]
	if !exists || notification.RecipientID != recipientID {
		return apperr.New(apperr.KindNotFound, "notification not found")
	}
	notification.IsRead = true
	notification.UpdatedAt = time.Now()
	return nil
}

func sortTransfers(transfers []*models.Transfer) {
	sort.Slice(transfers, func(i, j int) bool {
		if !transfers[i].CreatedAt.Equal(transfers[j].CreatedAt) {
			return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
		}
		return transfers[i].ID > transfers[j].ID
	})
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
