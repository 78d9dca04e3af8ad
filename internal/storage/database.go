package storage

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// DatabaseStore persists everything through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.KindNotFound, msg)
	}
	return err
}

// Account operations

func (d *DatabaseStore) CreateAccount(account *models.Account) (*models.Account, error) {
	var count int64
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if err := d.db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.New(apperr.KindValidation, "email already registered")
	}
	if err := d.db.Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (d *DatabaseStore) GetAccount(accountID string) (*models.Account, error) {
	var account models.Account
	if err := d.db.Where("account_id = ?", accountID).First(&account).Error; err != nil {
		return nil, translateNotFound(err, "account not found")
	}
	return &account, nil
}

func (d *DatabaseStore) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	email = strings.ToLower(strings.TrimSpace(email))
	if err := d.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translateNotFound(err, "account not found")
	}
	return &account, nil
}

func (d *DatabaseStore) UpdateAccount(account *models.Account) error {
	return d.db.Save(account).Error
}

func (d *DatabaseStore) SearchProfessionals(search *models.ProfessionalSearch) ([]*models.Account, int64, error) {
	query := d.db.Model(&models.Account{}).
		Where("role = ? AND available = ?", models.RoleProfessional, true)

	if search.Specialty != "" {
		query = query.Where("LOWER(specialty) = LOWER(?)", search.Specialty)
	}
	if search.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", search.City)
	}
	if search.SearchTerm != "" {
		term := "%" + strings.ToLower(search.SearchTerm) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(bio) LIKE ? OR LOWER(specialty) LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(search.Page, search.PerPage)
	professionals := []*models.Account{}
	err := query.
		Order("rating DESC, account_id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&professionals).Error
	if err != nil {
		return nil, 0, err
	}
	return professionals, total, nil
}

// Guest session operations

func (d *DatabaseStore) GetGuestSession(token string) (*models.GuestSession, error) {
	var session models.GuestSession
	if err := d.db.Where("token = ?", token).First(&session).Error; err != nil {
		return nil, translateNotFound(err, "guest session not found")
	}
	return &session, nil
}

func (d *DatabaseStore) CreateGuestSession(session *models.GuestSession) (*models.GuestSession, error) {
	if err := d.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DatabaseStore) UpdateGuestSession(session *models.GuestSession) error {
	return d.db.Save(session).Error
}

func (d *DatabaseStore) DeleteExpiredGuestSessions() (int64, error) {
	result := d.db.Where("expires_at < NOW()").Delete(&models.GuestSession{})
	return result.RowsAffected, result.Error
}

// Transfer operations

func (d *DatabaseStore) CreateTransfer(transfer *models.Transfer) (*models.Transfer, error) {
	// The pending-pair check and the insert share a transaction so two
	// concurrent submissions cannot both slip through.
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Transfer{}).
			Where("client_id = ? AND professional_id = ? AND status = ?",
				transfer.ClientID, transfer.ProfessionalID, models.TransferStatusPending).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.New(apperr.KindStateConflict, "a request to this professional is already pending")
		}
		return tx.Create(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (d *DatabaseStore) GetTransfer(transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := d.db.Where("transfer_id = ?", transferID).First(&transfer).Error; err != nil {
		return nil, translateNotFound(err, "transfer not found")
	}
	return &transfer, nil
}

func (d *DatabaseStore) GetTransfersByClient(clientID string) ([]*models.Transfer, error) {
	transfers := []*models.Transfer{}
	err := d.db.Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&transfers).Error
	return transfers, err
}

func (d *DatabaseStore) GetTransfersByProfessional(professionalID string, statuses []string) ([]*models.Transfer, error) {
	query := d.db.Where("professional_id = ?", professionalID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	transfers := []*models.Transfer{}
	err := query.Order("created_at DESC, id DESC").Find(&transfers).Error
	return transfers, err
}

func (d *DatabaseStore) HasPendingTransfer(clientID, professionalID string) (bool, error) {
	var count int64
	err := d.db.Model(&models.Transfer{}).
		Where("client_id = ? AND professional_id = ? AND status = ?",
			clientID, professionalID, models.TransferStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (d *DatabaseStore) TransitionTransfer(transferID, fromStatus string, apply func(*models.Transfer)) (*models.Transfer, error) {
	var transfer models.Transfer
	// Row lock plus status re-check inside one transaction: of two
	// concurrent transitions, the second sees the first's result and
	// fails the guard instead of overwriting it.
	err := d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transfer_id = ?", transferID).
			First(&transfer).Error
		if err != nil {
			return translateNotFound(err, "transfer not found")
		}
		if transfer.Status != fromStatus {
			return apperr.Newf(apperr.KindStateConflict, "transfer is no longer %q", fromStatus)
		}
		apply(&transfer)
		return tx.Save(&transfer).Error
	})
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// Message operations

func (d *DatabaseStore) CreateMessage(message *models.Message) (*models.Message, error) {
	if err := d.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (d *DatabaseStore) GetMessagesByTransfer(transferID string) ([]*models.Message, error) {
	messages := []*models.Message{}
	err := d.db.Where("transfer_id = ?", transferID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (d *DatabaseStore) MarkMessagesRead(transferID, readerRole string) (int64, error) {
	result := d.db.Model(&models.Message{}).
		Where("transfer_id = ? AND sender_role <> ? AND is_read = ?", transferID, readerRole, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (d *DatabaseStore) CountUnreadMessages(transferID, readerRole string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("transfer_id = ? AND sender_role <> ? AND is_read = ?", transferID, readerRole, false).
		Count(&count).Error
	return count, err
}

// Notification operations

func (d *DatabaseStore) CreateNotification(notification *models.Notification) (*models.Notification, error) {
	if err := d.db.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (d *DatabaseStore) GetNotifications(recipientID string, page, perPage int) ([]*models.Notification, int64, error) {
	query := d.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)
	notifications := []*models.Notification{}
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (d *DatabaseStore) CountUnreadNotifications(recipientID string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (d *DatabaseStore) MarkNotificationRead(notificationID, recipientID string) error {
	result := d.db.Model(&models.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "notification not found")
	}
	return nil
}
