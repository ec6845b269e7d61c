package repository

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
)

// ProfileRepository reads profiles and writes their subscription columns.
// Lookups return (nil, nil) when no row matches.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*model.Profile, error)
	GetByCustomerID(ctx context.Context, provider entity.ProviderName, customerID string) (*model.Profile, error)
	GetBySubscriptionID(ctx context.Context, provider entity.ProviderName, subscriptionID string) (*model.Profile, error)
	UpdateSubscription(ctx context.Context, userID string, update *entity.ProfileUpdate) error
	SetCustomerID(ctx context.Context, userID string, provider entity.ProviderName, customerID string) error
	ListPaid(ctx context.Context) ([]*model.Profile, error)
}
