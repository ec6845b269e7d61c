package http

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/usecase"
)

// SyncService is the part of usecase.SyncService the handlers call.
type SyncService interface {
	Sync(ctx context.Context, req usecase.SyncRequest) (*usecase.SyncResponse, error)
	Status(ctx context.Context, userID string) (*entity.SubscriptionState, error)
}

// WebhookService is the part of usecase.WebhookService the webhook handlers call.
type WebhookService interface {
	HandleSubscriptionChanged(ctx context.Context, sub *entity.ProviderSubscription, eventType entity.EventType) error
	HandleSubscriptionCanceled(ctx context.Context, sub *entity.ProviderSubscription, immediate bool) error
	HandlePaymentSucceeded(ctx context.Context, name entity.ProviderName, payment *usecase.PaymentInfo) error
	HandlePaymentFailed(ctx context.Context, name entity.ProviderName, payment *usecase.PaymentInfo) error
	HandleCustomerStateChanged(ctx context.Context, name entity.ProviderName, state *usecase.CustomerState) error
	HandleCheckoutCompleted(ctx context.Context, name entity.ProviderName, checkout *usecase.CheckoutInfo) error
}

var (
	_ SyncService    = (*usecase.SyncService)(nil)
	_ WebhookService = (*usecase.WebhookService)(nil)
)
