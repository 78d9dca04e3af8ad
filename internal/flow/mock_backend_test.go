package flow

import (
	"github.com/stretchr/testify/mock"

	"github.com/lexlink/lexlink-backend/internal/models"
)

// MockBackend is a mock type for the Backend interface
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Register(reg *models.Registration) (*AuthResult, error) {
	args := m.Called(reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockBackend) Login(email, password string) (*AuthResult, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockBackend) Me(token string) (*IdentitySnapshot, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*IdentitySnapshot), args.Error(1)
}

func (m *MockBackend) SavePendingSelection(token string, draft *models.HandoffDraft) error {
	args := m.Called(token, draft)
	return args.Error(0)
}

func (m *MockBackend) ClearPendingSelection(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockBackend) SearchProfessionals(query ProfessionalQuery) (*ProfessionalPage, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProfessionalPage), args.Error(1)
}

func (m *MockBackend) CreateTransfer(token string, sub *models.TransferSubmission) (*models.Transfer, error) {
	args := m.Called(token, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) ListTransfers(token string) ([]*models.Transfer, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transfer), args.Error(1)
}

func (m *MockBackend) GetTransfer(token, transferID string) (*models.Transfer, error) {
	args := m.Called(token, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) AcceptTransfer(token, transferID, response string, agreedTerms *string) (*models.Transfer, error) {
	args := m.Called(token, transferID, response, agreedTerms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) RejectTransfer(token, transferID, response string) (*models.Transfer, error) {
	args := m.Called(token, transferID, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) CancelTransfer(token, transferID string) (*models.Transfer, error) {
	args := m.Called(token, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) CompleteTransfer(token, transferID string) (*models.Transfer, error) {
	args := m.Called(token, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockBackend) FetchMessages(token, transferID string) ([]*models.Message, error) {
	args := m.Called(token, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockBackend) SendMessage(token, transferID string, sub *models.MessageSubmission) (*models.Message, error) {
	args := m.Called(token, transferID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockBackend) MarkMessagesRead(token, transferID string) error {
	args := m.Called(token, transferID)
	return args.Error(0)
}

func (m *MockBackend) Notifications(token string, page int) (*NotificationPage, error) {
	args := m.Called(token, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotificationPage), args.Error(1)
}

func (m *MockBackend) UnreadNotificationCount(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBackend) AskQuestion(token, guestToken, question string) (*QuestionReply, error) {
	args := m.Called(token, guestToken, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QuestionReply), args.Error(1)
}
