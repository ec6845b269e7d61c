package http

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context, req usecase.SyncRequest) (*usecase.SyncResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*usecase.SyncResponse)
	return resp, args.Error(1)
}

func (m *MockSyncService) Status(ctx context.Context, userID string) (*entity.SubscriptionState, error) {
	args := m.Called(ctx, userID)
	state, _ := args.Get(0).(*entity.SubscriptionState)
	return state, args.Error(1)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandleSubscriptionChanged(ctx context.Context, sub *entity.ProviderSubscription, eventType entity.EventType) error {
	return m.Called(ctx, sub, eventType).Error(0)
}

func (m *MockWebhookService) HandleSubscriptionCanceled(ctx context.Context, sub *entity.ProviderSubscription, immediate bool) error {
	return m.Called(ctx, sub, immediate).Error(0)
}

func (m *MockWebhookService) HandlePaymentSucceeded(ctx context.Context, name entity.ProviderName, payment *usecase.PaymentInfo) error {
	return m.Called(ctx, name, payment).Error(0)
}

func (m *MockWebhookService) HandlePaymentFailed(ctx context.Context, name entity.ProviderName, payment *usecase.PaymentInfo) error {
	return m.Called(ctx, name, payment).Error(0)
}

func (m *MockWebhookService) HandleCustomerStateChanged(ctx context.Context, name entity.ProviderName, state *usecase.CustomerState) error {
	return m.Called(ctx, name, state).Error(0)
}

func (m *MockWebhookService) HandleCheckoutCompleted(ctx context.Context, name entity.ProviderName, checkout *usecase.CheckoutInfo) error {
	return m.Called(ctx, name, checkout).Error(0)
}
