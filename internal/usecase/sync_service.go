package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
)

// Providers holds the configured billing providers by name.
type Providers map[entity.ProviderName]provider.BillingProvider

type SyncRequest struct {
	UserID   string
	Recovery bool
	// Provider may be empty; see SyncService.ProviderFor.
	Provider entity.ProviderName
}

type SyncResponse struct {
	Synced       bool                      `json:"synced"`
	Outcome      entity.ReconcileOutcome   `json:"outcome"`
	Subscription *entity.SubscriptionState `json:"subscription,omitempty"`
	Warning      string                    `json:"warning,omitempty"`
	Message      string                    `json:"message"`
}

// SyncService runs the pull path: resolve customer, fetch subscription, reconcile.
type SyncService struct {
	providers       Providers
	defaultProvider entity.ProviderName
	profiles        repository.ProfileRepository
	reconciler      *Reconciler
	cache           repository.StatusCache
	logger          *zap.Logger
}

func NewSyncService(
	providers Providers,
	defaultProvider entity.ProviderName,
	profiles repository.ProfileRepository,
	reconciler *Reconciler,
	cache repository.StatusCache,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		providers:       providers,
		defaultProvider: defaultProvider,
		profiles:        profiles,
		reconciler:      reconciler,
		cache:           cache,
		logger:          logger,
	}
}

// ProviderFor returns the named provider, else the default provider, else
// the only configured provider.
func (s *SyncService) ProviderFor(name entity.ProviderName) (provider.BillingProvider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	if name == "" && len(s.providers) == 1 {
		for _, p := range s.providers {
			return p, nil
		}
	}
	if p, ok := s.providers[name]; ok && p != nil {
		return p, nil
	}
	return nil, domainErrors.ErrProviderNotConfigured
}

// Sync reconciles the user's profile with the provider. Provider read
// failures never downgrade: they yield a preserved, unsynced response.
//
// Without an explicit provider, the provider holding the profile's
// subscription is used before the default.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	profile, err := s.profiles.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, domainErrors.ErrProfileNotFound
	}

	requested := req.Provider
	if requested == "" {
		requested = s.providerOf(profile)
	}
	billing, err := s.ProviderFor(requested)
	if err != nil {
		return nil, err
	}
	name := billing.Name()

	log := s.logger.With(
		zap.String("user_id", profile.ID),
		zap.String("provider", string(name)),
		zap.Bool("recovery", req.Recovery),
	)

	opts := ReconcileOptions{
		IsRecoveryPass: req.Recovery,
		Provider:       name,
	}

	customer := NewCustomerResolver(billing, s.profiles, s.logger).ResolveCustomer(ctx, profile, false)
	if customer == nil {
		log.Info("No customer found")
		result, err := s.reconciler.Reconcile(ctx, profile.ID, nil, opts)
		if err != nil {
			return nil, err
		}
		return respond(result, fmt.Sprintf("No %s customer found for this account", name)), nil
	}

	fetched, err := NewSubscriptionFetcher(billing, s.logger).FetchActiveSubscription(ctx, customer.ID)
	if err != nil {
		log.Warn("Subscription fetch failed, treating as inconclusive", zap.Error(err))
		state := profile.State()
		return &SyncResponse{
			Synced:       false,
			Outcome:      entity.OutcomePreserved,
			Subscription: &state,
			Warning:      fmt.Sprintf("Could not reach %s; the current plan was kept", name),
			Message:      "Subscription state could not be verified",
		}, nil
	}

	if fetched.Subscription == nil {
		opts.Metadata = map[string]interface{}{
			"customer_id": customer.ID,
			"total":       fetched.Total,
			"last_status": string(fetched.LastStatus),
		}
		if s.confirmedCanceled(profile, name, fetched, req.Recovery) {
			log.Info("Provider reports the subscription canceled, applying period-end policy")
			result, err := s.reconciler.Cancel(ctx, profile.ID, nil, opts)
			if err != nil {
				return nil, err
			}
			return respond(result, fmt.Sprintf("Subscription is no longer active (last status: %s)", fetched.LastStatus)), nil
		}

		result, err := s.reconciler.Reconcile(ctx, profile.ID, nil, opts)
		if err != nil {
			return nil, err
		}
		message := "No subscription found for this account"
		if fetched.Lapsed() {
			message = fmt.Sprintf("Subscription is no longer active (last status: %s)", fetched.LastStatus)
		}
		return respond(result, message), nil
	}

	sub := fetched.Subscription
	if sub.Provider == "" {
		sub.Provider = name
	}
	result, err := s.reconciler.Reconcile(ctx, profile.ID, sub, opts)
	if err != nil {
		return nil, err
	}
	return respond(result, "Subscription synced successfully"), nil
}

// confirmedCanceled reports whether a non-recovery sync of a paid profile
// found only a canceled subscription at the provider billing it. The stored
// period end must be known; Cancel then keeps the plan until it passes.
func (s *SyncService) confirmedCanceled(profile *model.Profile, name entity.ProviderName, fetched *entity.FetchResult, recovery bool) bool {
	if recovery || !fetched.Lapsed() || fetched.LastStatus != entity.StatusCanceled {
		return false
	}
	if !profile.Plan().IsPaid() || profile.SubscriptionCurrentPeriodEnd == nil {
		return false
	}
	active := profile.ActiveProvider()
	return active == "" || active == name
}

func respond(result *entity.ReconcileResult, message string) *SyncResponse {
	state := result.State
	resp := &SyncResponse{
		Synced:       result.Synced,
		Outcome:      result.Outcome,
		Subscription: &state,
		Message:      message,
	}
	if result.Outcome == entity.OutcomePreserved {
		resp.Warning = fmt.Sprintf("No active subscription found; %s plan preserved until a recovery sync confirms it", state.PlanID)
	}
	return resp
}

// EnsureCustomer resolves the user's provider customer, creating it when none exists.
func (s *SyncService) EnsureCustomer(ctx context.Context, userID string, name entity.ProviderName) (*entity.Customer, error) {
	billing, err := s.ProviderFor(name)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, domainErrors.ErrProfileNotFound
	}

	customer := NewCustomerResolver(billing, s.profiles, s.logger).ResolveCustomer(ctx, profile, true)
	if customer == nil {
		return nil, domainErrors.ErrCustomerNotFound
	}
	return customer, nil
}

// Status returns the user's subscription state, served from the cache when possible.
func (s *SyncService) Status(ctx context.Context, userID string) (*entity.SubscriptionState, error) {
	if s.cache != nil {
		if state, ok := s.cache.Get(ctx, userID); ok {
			return state, nil
		}
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, domainErrors.ErrProfileNotFound
	}

	state := profile.State()
	if s.cache != nil {
		s.cache.Set(ctx, &state)
	}
	return &state, nil
}

// RecoveryOutcome is the per-user result of a bulk recovery pass.
type RecoveryOutcome struct {
	UserID   string
	Response *SyncResponse
	Err      error
}

// RecoverAllPaid runs a recovery sync for every profile on a paid plan,
// against the provider that holds its subscription (else the default).
// Failures are collected per user; a bulk pass never stops early.
func (s *SyncService) RecoverAllPaid(ctx context.Context) ([]RecoveryOutcome, error) {
	profiles, err := s.profiles.ListPaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid profiles: %w", err)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	outcomes := make([]RecoveryOutcome, 0, len(profiles))
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		resp, err := s.Sync(ctx, SyncRequest{UserID: p.ID, Recovery: true})
		if err != nil && !errors.Is(err, domainErrors.ErrProfileNotFound) {
			s.logger.Error("Recovery sync failed", zap.String("user_id", p.ID), zap.Error(err))
		}
		outcomes = append(outcomes, RecoveryOutcome{UserID: p.ID, Response: resp, Err: err})
	}
	return outcomes, nil
}

func (s *SyncService) providerOf(p *model.Profile) entity.ProviderName {
	if name := p.ActiveProvider(); name != "" {
		if _, ok := s.providers[name]; ok {
			return name
		}
	}
	return ""
}
