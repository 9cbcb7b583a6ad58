package usecase

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, orderID int64, expected []model.OrderStatus, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, expected, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	args := m.Called(ctx, orderID, note)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateRefund(ctx context.Context, refund *model.OrderRefund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockOrderRepository) RefundExists(ctx context.Context, orderID int64, processorRefundID string) (bool, error) {
	args := m.Called(ctx, orderID, processorRefundID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) RefundedTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of repository.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetForOrder(ctx context.Context, orderID int64) ([]*model.Subscription, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) SetBillingAgreementID(ctx context.Context, subscriptionID int64, agreementID string) error {
	args := m.Called(ctx, subscriptionID, agreementID)
	return args.Error(0)
}

// MockWebhookEventRepository is a mock implementation of repository.WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) SaveEvent(ctx context.Context, eventID, eventType, mode string, data json.RawMessage) (bool, error) {
	args := m.Called(ctx, eventID, eventType, mode, data)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockSettingRepository is a mock implementation of repository.SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettingRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockMarkerStore is a mock implementation of repository.RefundMarkerStore
type MockMarkerStore struct {
	mock.Mock
}

func (m *MockMarkerStore) SeenOrMark(ctx context.Context, orderID int64, refundID string) (bool, error) {
	args := m.Called(ctx, orderID, refundID)
	return args.Bool(0), args.Error(1)
}

// MockProcessorClient is a mock implementation of ProcessorClient
type MockProcessorClient struct {
	mock.Mock
}

func (m *MockProcessorClient) CreateOrder(ctx context.Context, req *wire.OrderRequest) (*wire.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.Order), args.Error(1)
}

func (m *MockProcessorClient) CaptureOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.Order), args.Error(1)
}

func (m *MockProcessorClient) AuthorizeOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.Order), args.Error(1)
}

func (m *MockProcessorClient) RefundCapture(ctx context.Context, captureID string, req *wire.RefundRequest) (*wire.Refund, error) {
	args := m.Called(ctx, captureID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.Refund), args.Error(1)
}

func (m *MockProcessorClient) CreateAgreementToken(ctx context.Context, req *wire.AgreementTokenRequest) (*wire.AgreementToken, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.AgreementToken), args.Error(1)
}

func (m *MockProcessorClient) CreateBillingAgreement(ctx context.Context, tokenID string) (*wire.Agreement, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.Agreement), args.Error(1)
}

func (m *MockProcessorClient) UserInfo(ctx context.Context) (*wire.UserInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.UserInfo), args.Error(1)
}

func (m *MockProcessorClient) CreateWebhook(ctx context.Context, listenerURL string, eventTypes []string) (*wire.WebhookRegistration, error) {
	args := m.Called(ctx, listenerURL, eventTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.WebhookRegistration), args.Error(1)
}

func (m *MockProcessorClient) DeleteWebhook(ctx context.Context, webhookID string) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockProcessorClient) VerifyWebhookSignature(ctx context.Context, req *wire.VerifySignatureRequest) (*wire.VerifySignatureResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wire.VerifySignatureResponse), args.Error(1)
}
