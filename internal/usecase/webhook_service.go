package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentInfo is an invoice or order payment pushed by a provider.
type PaymentInfo struct {
	UserID         string
	CustomerID     string
	SubscriptionID string
	InvoiceID      string
	Amount         decimal.Decimal
	Currency       string
	Reason         string
}

// CustomerState is a provider's view of a customer and its active subscriptions.
type CustomerState struct {
	UserID        string
	CustomerID    string
	Subscriptions []*entity.ProviderSubscription
}

// CheckoutInfo links a completed checkout to a user.
type CheckoutInfo struct {
	UserID         string
	CustomerID     string
	SubscriptionID string
	SessionID      string
}

// WebhookService turns verified provider events into reconciler calls.
// Events whose user cannot be derived are logged and acknowledged.
type WebhookService struct {
	providers  Providers
	profiles   repository.ProfileRepository
	reconciler *Reconciler
	events     *EventLog
	logger     *zap.Logger
}

func NewWebhookService(
	providers Providers,
	profiles repository.ProfileRepository,
	reconciler *Reconciler,
	events *EventLog,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		providers:  providers,
		profiles:   profiles,
		reconciler: reconciler,
		events:     events,
		logger:     logger,
	}
}

// HandleSubscriptionChanged writes the full subscription onto the profile.
// A canceled subscription is routed to HandleSubscriptionCanceled.
func (s *WebhookService) HandleSubscriptionChanged(ctx context.Context, sub *entity.ProviderSubscription, eventType entity.EventType) error {
	if sub.Status == entity.StatusCanceled {
		return s.HandleSubscriptionCanceled(ctx, sub, false)
	}

	userID, err := s.resolveUser(ctx, sub.Provider, sub.UserID, sub.CustomerID, sub.ID)
	if err != nil || userID == "" {
		return err
	}

	if !isLive(sub.Status) {
		profile, err := s.profiles.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile == nil {
			return nil
		}
		if current := profile.SubscriptionID(sub.Provider); current != "" && current != sub.ID {
			s.logger.Info("Ignoring update of superseded subscription",
				zap.String("user_id", userID),
				zap.String("subscription_id", sub.ID),
				zap.String("status", string(sub.Status)),
			)
			return nil
		}
	}

	_, err = s.reconciler.Reconcile(ctx, userID, sub, ReconcileOptions{
		Provider:  sub.Provider,
		EventType: eventType,
	})
	return err
}

// HandleSubscriptionCanceled applies the cancellation policy; immediate
// cancellations (revocations) reset the plan at once.
func (s *WebhookService) HandleSubscriptionCanceled(ctx context.Context, sub *entity.ProviderSubscription, immediate bool) error {
	userID, err := s.resolveUser(ctx, sub.Provider, sub.UserID, sub.CustomerID, sub.ID)
	if err != nil || userID == "" {
		return err
	}

	eventType := entity.EventSubscriptionCanceled
	if immediate {
		eventType = entity.EventSubscriptionRevoked
	}

	_, err = s.reconciler.Cancel(ctx, userID, sub, ReconcileOptions{
		Provider:  sub.Provider,
		EventType: eventType,
		Immediate: immediate,
	})
	return err
}

// HandlePaymentSucceeded re-fetches the paid subscription and marks it
// active, overriding an incomplete status left by subscription creation.
func (s *WebhookService) HandlePaymentSucceeded(ctx context.Context, name entity.ProviderName, payment *PaymentInfo) error {
	if payment.SubscriptionID == "" {
		s.logger.Debug("Payment not linked to a subscription", zap.String("invoice_id", payment.InvoiceID))
		return nil
	}

	billing, ok := s.providers[name]
	if !ok {
		return fmt.Errorf("%s provider not configured", name)
	}

	sub, err := billing.GetSubscription(ctx, payment.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to fetch paid subscription: %w", err)
	}
	if sub.Provider == "" {
		sub.Provider = name
	}
	if sub.UserID == "" {
		sub.UserID = payment.UserID
	}

	userID, err := s.resolveUser(ctx, name, sub.UserID, firstNonEmpty(sub.CustomerID, payment.CustomerID), sub.ID)
	if err != nil || userID == "" {
		return err
	}

	_, err = s.reconciler.Reconcile(ctx, userID, sub, ReconcileOptions{
		Provider:    name,
		EventType:   entity.EventPaymentSucceeded,
		ForceStatus: entity.StatusActive,
		Metadata:    paymentMetadata(payment),
	})
	return err
}

// HandlePaymentFailed only records an audit event; dunning and the
// provider's following subscription update drive any status change.
func (s *WebhookService) HandlePaymentFailed(ctx context.Context, name entity.ProviderName, payment *PaymentInfo) error {
	userID, err := s.resolveUser(ctx, name, payment.UserID, payment.CustomerID, payment.SubscriptionID)
	if err != nil || userID == "" {
		return err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.logger.Warn("Payment failed",
		zap.String("user_id", userID),
		zap.String("provider", string(name)),
		zap.String("subscription_id", payment.SubscriptionID),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)

	s.events.Record(ctx, &entity.EventEntry{
		UserID:         userID,
		EventType:      entity.EventPaymentFailed,
		FromPlan:       profile.Plan(),
		ToPlan:         profile.Plan(),
		SubscriptionID: payment.SubscriptionID,
		CustomerID:     payment.CustomerID,
		Provider:       name,
		Metadata:       paymentMetadata(payment),
	})
	return nil
}

// HandleCustomerStateChanged recomputes the profile from the customer's
// current subscriptions. With none left, the profile's subscription is canceled.
func (s *WebhookService) HandleCustomerStateChanged(ctx context.Context, name entity.ProviderName, state *CustomerState) error {
	userID, err := s.resolveUser(ctx, name, state.UserID, state.CustomerID, "")
	if err != nil || userID == "" {
		return err
	}

	selected := SelectSubscription(state.Subscriptions)
	if sub := selected.Subscription; sub != nil {
		if sub.Provider == "" {
			sub.Provider = name
		}
		if sub.CustomerID == "" {
			sub.CustomerID = state.CustomerID
		}
		_, err = s.reconciler.Reconcile(ctx, userID, sub, ReconcileOptions{
			Provider:  name,
			EventType: entity.EventCustomerStateChanged,
		})
		return err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || profile.SubscriptionID(name) == "" {
		s.logger.Debug("Customer has no subscriptions to reconcile", zap.String("user_id", userID))
		return nil
	}

	_, err = s.reconciler.Cancel(ctx, userID, nil, ReconcileOptions{
		Provider:  name,
		EventType: entity.EventCustomerStateChanged,
	})
	return err
}

// HandleCheckoutCompleted stores the checkout's customer on the user, then
// reconciles the subscription the checkout created.
func (s *WebhookService) HandleCheckoutCompleted(ctx context.Context, name entity.ProviderName, checkout *CheckoutInfo) error {
	userID, err := s.resolveUser(ctx, name, checkout.UserID, checkout.CustomerID, checkout.SubscriptionID)
	if err != nil || userID == "" {
		return err
	}

	if checkout.CustomerID != "" {
		if err := s.profiles.SetCustomerID(ctx, userID, name, checkout.CustomerID); err != nil {
			return fmt.Errorf("failed to store customer ID: %w", err)
		}
	}

	if checkout.SubscriptionID == "" {
		return nil
	}

	billing, ok := s.providers[name]
	if !ok {
		return fmt.Errorf("%s provider not configured", name)
	}
	sub, err := billing.GetSubscription(ctx, checkout.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to fetch checkout subscription: %w", err)
	}
	if sub.Provider == "" {
		sub.Provider = name
	}

	_, err = s.reconciler.Reconcile(ctx, userID, sub, ReconcileOptions{
		Provider:  name,
		EventType: entity.EventCheckoutCompleted,
		Metadata:  map[string]interface{}{"session_id": checkout.SessionID},
	})
	return err
}

// resolveUser derives the user of an event: a user ID carried in the payload
// first, then the profile holding the customer ID, then the subscription ID.
// It returns "" when no profile matches.
func (s *WebhookService) resolveUser(ctx context.Context, name entity.ProviderName, userID, customerID, subscriptionID string) (string, error) {
	if _, err := uuid.Parse(userID); err == nil {
		profile, err := s.profiles.GetByID(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("failed to load profile: %w", err)
		}
		if profile != nil {
			return profile.ID, nil
		}
	}

	if customerID != "" {
		profile, err := s.profiles.GetByCustomerID(ctx, name, customerID)
		if err != nil {
			return "", fmt.Errorf("failed to find profile by customer: %w", err)
		}
		if profile != nil {
			return profile.ID, nil
		}
	}

	if subscriptionID != "" {
		profile, err := s.profiles.GetBySubscriptionID(ctx, name, subscriptionID)
		if err != nil {
			return "", fmt.Errorf("failed to find profile by subscription: %w", err)
		}
		if profile != nil {
			return profile.ID, nil
		}
	}

	s.logger.Warn("Webhook event has no matching profile",
		zap.String("provider", string(name)),
		zap.String("user_id", userID),
		zap.String("customer_id", customerID),
		zap.String("subscription_id", subscriptionID),
	)
	return "", nil
}

func isLive(status entity.SubscriptionStatus) bool {
	switch status {
	case entity.StatusActive, entity.StatusTrialing, entity.StatusPastDue:
		return true
	}
	return false
}

func paymentMetadata(p *PaymentInfo) map[string]interface{} {
	meta := map[string]interface{}{
		"invoice_id": p.InvoiceID,
		"amount":     p.Amount.StringFixed(2),
	}
	if p.Currency != "" {
		meta["currency"] = p.Currency
	}
	if p.Reason != "" {
		meta["reason"] = p.Reason
	}
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
