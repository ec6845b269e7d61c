package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type providerColumns struct {
	customer     string
	subscription string
	reference    string
}

var columnsByProvider = map[entity.ProviderName]providerColumns{
	entity.ProviderStripe: {"stripe_customer_id", "stripe_subscription_id", "stripe_price_id"},
	entity.ProviderPolar:  {"polar_customer_id", "polar_subscription_id", "polar_product_id"},
}

type profileRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewProfileRepository(db *gorm.DB, logger *zap.Logger) repository.ProfileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *profileRepository) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *profileRepository) GetByCustomerID(ctx context.Context, provider entity.ProviderName, customerID string) (*model.Profile, error) {
	cols, ok := columnsByProvider[provider]
	if !ok {
		return nil, domainErrors.ErrUnknownProvider
	}
	return r.first(ctx, cols.customer+" = ?", customerID)
}

func (r *profileRepository) GetBySubscriptionID(ctx context.Context, provider entity.ProviderName, subscriptionID string) (*model.Profile, error) {
	cols, ok := columnsByProvider[provider]
	if !ok {
		return nil, domainErrors.ErrUnknownProvider
	}
	return r.first(ctx, cols.subscription+" = ?", subscriptionID)
}

func (r *profileRepository) first(ctx context.Context, query string, arg interface{}) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where(query, arg).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get profile", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpdateSubscription writes the update's provider references and clears
// the other provider's subscription and price/product columns.
// Customer IDs are only ever set, never cleared.
func (r *profileRepository) UpdateSubscription(ctx context.Context, userID string, update *entity.ProfileUpdate) error {
	updates := map[string]interface{}{
		"subscription_plan_id":              string(update.PlanID.OrFree()),
		"subscription_status":               string(update.Status),
		"subscription_current_period_start": update.CurrentPeriodStart,
		"subscription_current_period_end":   update.CurrentPeriodEnd,
		"cancel_at_period_end":              update.CancelAtPeriodEnd,
		"updated_at":                        time.Now().UTC(),
	}

	for name, cols := range columnsByProvider {
		if name != update.Provider {
			updates[cols.subscription] = nil
			updates[cols.reference] = nil
			continue
		}
		updates[cols.subscription] = nullable(update.SubscriptionID)
		updates[cols.reference] = nullable(update.PlanReference)
		if update.CustomerID != "" {
			updates[cols.customer] = update.CustomerID
		}
	}

	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update profile subscription",
			zap.String("user_id", userID),
			zap.Error(result.Error),
		)
		return fmt.Errorf("failed to update profile subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) SetCustomerID(ctx context.Context, userID string, provider entity.ProviderName, customerID string) error {
	cols, ok := columnsByProvider[provider]
	if !ok {
		return domainErrors.ErrUnknownProvider
	}

	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			cols.customer: customerID,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to set customer ID",
			zap.String("user_id", userID),
			zap.String("provider", string(provider)),
			zap.Error(result.Error),
		)
		return fmt.Errorf("failed to set customer ID: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) ListPaid(ctx context.Context) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.WithContext(ctx).
		Where("subscription_plan_id IN ?", []string{string(entity.PlanProMonthly), string(entity.PlanProYearly)}).
		Order("id").
		Find(&profiles).Error
	if err != nil {
		r.logger.Error("Failed to list paid profiles", zap.Error(err))
		return nil, fmt.Errorf("failed to list paid profiles: %w", err)
	}
	return profiles, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
