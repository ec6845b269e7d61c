package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"go.uber.org/zap"
)

// SubscriptionFetcher selects a customer's current subscription.
type SubscriptionFetcher struct {
	provider provider.BillingProvider
	logger   *zap.Logger
}

func NewSubscriptionFetcher(billing provider.BillingProvider, logger *zap.Logger) *SubscriptionFetcher {
	return &SubscriptionFetcher{provider: billing, logger: logger}
}

// FetchActiveSubscription lists every subscription of the customer and
// selects one with SelectSubscription. Provider errors are returned so the
// caller can treat the read as inconclusive.
func (f *SubscriptionFetcher) FetchActiveSubscription(ctx context.Context, customerID string) (*entity.FetchResult, error) {
	subs, err := f.provider.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	result := SelectSubscription(subs)
	f.logger.Debug("Fetched subscriptions",
		zap.String("provider", string(f.provider.Name())),
		zap.String("customer_id", customerID),
		zap.Int("total", result.Total),
		zap.Bool("selected", result.Subscription != nil),
	)
	return result, nil
}

// SelectSubscription prefers an active subscription, then a past_due one.
// Among candidates of the same status the one with the latest
// current period start wins; on equal starts the later list entry wins.
func SelectSubscription(subs []*entity.ProviderSubscription) *entity.FetchResult {
	result := &entity.FetchResult{Total: len(subs)}

	for _, status := range []entity.SubscriptionStatus{entity.StatusActive, entity.StatusPastDue} {
		if sub := latest(subs, func(s *entity.ProviderSubscription) bool { return s.Status == status }); sub != nil {
			result.Subscription = sub
			return result
		}
	}

	if last := latest(subs, func(*entity.ProviderSubscription) bool { return true }); last != nil {
		result.LastStatus = last.Status
	}
	return result
}

func latest(subs []*entity.ProviderSubscription, match func(*entity.ProviderSubscription) bool) *entity.ProviderSubscription {
	var best *entity.ProviderSubscription
	for _, s := range subs {
		if s == nil || !match(s) {
			continue
		}
		if best == nil || !periodStart(s).Before(periodStart(best)) {
			best = s
		}
	}
	return best
}

func periodStart(s *entity.ProviderSubscription) time.Time {
	if s.CurrentPeriodStart == nil {
		return time.Time{}
	}
	return *s.CurrentPeriodStart
}
