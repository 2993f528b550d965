package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock DealRepository ---
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealRepository) ListDeals(ctx context.Context, filter portsrepo.DealFilter, limit int, nextToken *string) ([]domain.Deal, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var deals []domain.Deal
	if args.Get(0) != nil {
		deals = args.Get(0).([]domain.Deal)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return deals, token, args.Error(2)
}

func (m *MockDealRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *MockDealRepository) UpdateDeal(ctx context.Context, deal domain.Deal, expectedVersion int64, newEntries []domain.NegotiationEntry) error {
	return m.Called(ctx, deal, expectedVersion, newEntries).Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByDeal(ctx context.Context, dealID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ConfirmTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) FailTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ReleaseTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

// --- Mock ChatRepository ---
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) FindMessageByID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) ListUndelivered(ctx context.Context, receiverID string, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, receiverID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) ListConversation(ctx context.Context, userID, partnerID string, limit int, nextToken *string) ([]domain.ChatMessage, *string, error) {
	args := m.Called(ctx, userID, partnerID, limit, nextToken)
	var msgs []domain.ChatMessage
	if args.Get(0) != nil {
		msgs = args.Get(0).([]domain.ChatMessage)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return msgs, token, args.Error(2)
}

func (m *MockChatRepository) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *MockChatRepository) SaveMessage(ctx context.Context, msg domain.ChatMessage) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepository) MarkDelivered(ctx context.Context, messageID, receiverID string, at time.Time) error {
	return m.Called(ctx, messageID, receiverID, at).Error(0)
}

// --- Mock CollaborationRepository ---
type MockCollaborationRepository struct {
	mock.Mock
}

func (m *MockCollaborationRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.CollaborationRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationRequest), args.Error(1)
}

func (m *MockCollaborationRepository) ListRequests(ctx context.Context, userID string, incoming bool, status *domain.CollaborationStatus, limit, offset int) ([]domain.CollaborationRequest, error) {
	args := m.Called(ctx, userID, incoming, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollaborationRequest), args.Error(1)
}

func (m *MockCollaborationRepository) SaveRequest(ctx context.Context, req domain.CollaborationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockCollaborationRepository) UpdateRequestStatus(ctx context.Context, req domain.CollaborationRequest) error {
	return m.Called(ctx, req).Error(0)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetPlatformStats(ctx context.Context, since time.Time) (*domain.PlatformStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}

// --- Mock gateways ---
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateIntent(ctx context.Context, req gateways.IntentRequest) (*gateways.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.Intent), args.Error(1)
}

func (m *MockPaymentProcessor) ConfirmIntent(ctx context.Context, intentID string) (*gateways.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.Intent), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockKYCVerifier struct {
	mock.Mock
}

func (m *MockKYCVerifier) Verify(ctx context.Context, sub domain.KYCSubmission) (bool, error) {
	args := m.Called(ctx, sub)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Push(userID string, event string, payload any) int {
	return m.Called(userID, event, payload).Int(0)
}

// activeUser stubs any lookup of userID with an account in good standing.
func activeUser(m *MockUserRepository, userID string, role domain.UserRole) {
	m.On("FindUserByID", mock.Anything, userID).Return(&domain.User{UserID: userID, Role: role, KYCVerified: true}, nil).Maybe()
}
