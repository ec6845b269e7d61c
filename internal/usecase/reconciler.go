package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"github.com/jithinio/brillo-sub004/pkg/messaging"
	"go.uber.org/zap"
)

// ReconcileOptions controls a single reconciliation.
type ReconcileOptions struct {
	// IsRecoveryPass allows a missing subscription to downgrade a paid profile.
	IsRecoveryPass bool
	// Provider is used when the source does not name one.
	Provider entity.ProviderName
	// EventType overrides the recorded event type.
	EventType entity.EventType
	// ForceStatus replaces the provider-reported status.
	ForceStatus entity.SubscriptionStatus
	// Immediate makes Cancel reset the plan without waiting for the period end.
	Immediate bool
	// Metadata is merged into the recorded subscription event.
	Metadata map[string]interface{}
}

// PlanChangedMessage is published whenever a write moves a user to another plan.
type PlanChangedMessage struct {
	UserID    string                    `json:"userId"`
	FromPlan  entity.PlanID             `json:"fromPlan"`
	ToPlan    entity.PlanID             `json:"toPlan"`
	Status    entity.SubscriptionStatus `json:"status"`
	Provider  entity.ProviderName       `json:"provider,omitempty"`
	ChangedAt time.Time                 `json:"changedAt"`
}

// Reconciler is the only writer of profile subscription state.
type Reconciler struct {
	profiles    repository.ProfileRepository
	events      *EventLog
	mappers     map[entity.ProviderName]*PlanMapper
	cache       repository.StatusCache
	publisher   messaging.Publisher
	planChannel string
	now         func() time.Time
	logger      *zap.Logger
}

type ReconcilerOption func(*Reconciler)

// WithStatusCache invalidates cache entries on every write.
func WithStatusCache(cache repository.StatusCache) ReconcilerOption {
	return func(r *Reconciler) { r.cache = cache }
}

// WithPlanNotifier publishes PlanChangedMessage on channel.
func WithPlanNotifier(publisher messaging.Publisher, channel string) ReconcilerOption {
	return func(r *Reconciler) {
		r.publisher = publisher
		r.planChannel = channel
	}
}

func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(
	profiles repository.ProfileRepository,
	events *EventLog,
	mappers map[entity.ProviderName]*PlanMapper,
	logger *zap.Logger,
	opts ...ReconcilerOption,
) *Reconciler {
	r := &Reconciler{
		profiles: profiles,
		events:   events,
		mappers:  mappers,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile projects source onto the user's profile. A nil source downgrades
// the profile only on a recovery pass or when it is already free; otherwise
// the paid plan is preserved and nothing is written.
func (r *Reconciler) Reconcile(ctx context.Context, userID string, source *entity.ProviderSubscription, opts ReconcileOptions) (*entity.ReconcileResult, error) {
	profile, err := r.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if source == nil {
		return r.reconcileMissing(ctx, profile, opts)
	}

	providerName := source.Provider
	if providerName == "" {
		providerName = opts.Provider
	}

	status := source.Status
	if opts.ForceStatus != "" {
		status = opts.ForceStatus
	}

	update := &entity.ProfileUpdate{
		PlanID:             r.mapPlan(providerName, source),
		Status:             status,
		Provider:           providerName,
		CustomerID:         source.CustomerID,
		SubscriptionID:     source.ID,
		PlanReference:      source.PlanReference(),
		CurrentPeriodStart: source.CurrentPeriodStart,
		CurrentPeriodEnd:   source.CurrentPeriodEnd,
		CancelAtPeriodEnd:  source.CancelAtPeriodEnd,
	}

	eventType := opts.EventType
	if eventType == "" {
		eventType = entity.EventSynced
	}

	return r.write(ctx, profile, update, entity.OutcomeUpdated, eventType, opts.Metadata)
}

// Cancel marks the subscription canceled. The paid plan is kept while the
// current period has not ended; it is reset to free once the period end has
// passed, when it is unknown, or when opts.Immediate is set. A nil source
// cancels the subscription referenced by the profile.
func (r *Reconciler) Cancel(ctx context.Context, userID string, source *entity.ProviderSubscription, opts ReconcileOptions) (*entity.ReconcileResult, error) {
	profile, err := r.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	providerName := opts.Provider
	if source != nil && source.Provider != "" {
		providerName = source.Provider
	}
	if providerName == "" {
		providerName = profile.ActiveProvider()
	}

	eventType := opts.EventType
	if eventType == "" {
		eventType = entity.EventSubscriptionCanceled
	}

	current := profile.SubscriptionID(providerName)
	if source != nil && source.ID != "" && current != "" && current != source.ID {
		// an older subscription ended; the profile already follows a newer one
		r.logger.Info("Ignoring cancellation of superseded subscription",
			zap.String("user_id", profile.ID),
			zap.String("subscription_id", source.ID),
			zap.String("current_subscription_id", current),
		)
		r.events.Record(ctx, &entity.EventEntry{
			UserID:         profile.ID,
			EventType:      eventType,
			FromPlan:       profile.Plan(),
			ToPlan:         profile.Plan(),
			SubscriptionID: source.ID,
			CustomerID:     source.CustomerID,
			Provider:       providerName,
			Metadata:       withMetadata(opts.Metadata, "superseded", true),
		})
		return &entity.ReconcileResult{
			Outcome:  entity.OutcomePreserved,
			Synced:   true,
			FromPlan: profile.Plan(),
			State:    profile.State(),
		}, nil
	}

	update := &entity.ProfileUpdate{
		PlanID:             profile.Plan(),
		Status:             entity.StatusCanceled,
		Provider:           providerName,
		CustomerID:         profile.CustomerID(providerName),
		SubscriptionID:     current,
		CurrentPeriodStart: profile.SubscriptionCurrentPeriodStart,
		CurrentPeriodEnd:   profile.SubscriptionCurrentPeriodEnd,
		CancelAtPeriodEnd:  true,
	}
	switch providerName {
	case entity.ProviderStripe:
		update.PlanReference = deref(profile.StripePriceID)
	case entity.ProviderPolar:
		update.PlanReference = deref(profile.PolarProductID)
	}

	if source != nil {
		if mapped := r.mapPlan(providerName, source); mapped.IsPaid() {
			update.PlanID = mapped
		}
		if source.CustomerID != "" {
			update.CustomerID = source.CustomerID
		}
		if source.ID != "" {
			update.SubscriptionID = source.ID
		}
		if ref := source.PlanReference(); ref != "" {
			update.PlanReference = ref
		}
		if source.CurrentPeriodStart != nil {
			update.CurrentPeriodStart = source.CurrentPeriodStart
		}
		if source.CurrentPeriodEnd != nil {
			update.CurrentPeriodEnd = source.CurrentPeriodEnd
		}
	}

	periodOpen := update.CurrentPeriodEnd != nil && update.CurrentPeriodEnd.After(r.now())
	if opts.Immediate || !periodOpen {
		update.PlanID = entity.PlanFree
	}

	return r.write(ctx, profile, update, entity.OutcomeCanceled, eventType, opts.Metadata)
}

func (r *Reconciler) reconcileMissing(ctx context.Context, profile *model.Profile, opts ReconcileOptions) (*entity.ReconcileResult, error) {
	fromPlan := profile.Plan()

	if !opts.IsRecoveryPass && fromPlan.IsPaid() {
		r.logger.Warn("No subscription found for paid profile, preserving plan",
			zap.String("user_id", profile.ID),
			zap.String("plan_id", string(fromPlan)),
		)
		r.events.Record(ctx, &entity.EventEntry{
			UserID:    profile.ID,
			EventType: entity.EventSyncPreserved,
			FromPlan:  fromPlan,
			ToPlan:    fromPlan,
			Provider:  opts.Provider,
			Metadata:  opts.Metadata,
		})
		return &entity.ReconcileResult{
			Outcome:  entity.OutcomePreserved,
			Synced:   false,
			FromPlan: fromPlan,
			State:    profile.State(),
		}, nil
	}

	eventType := entity.EventSyncDowngraded
	if opts.IsRecoveryPass {
		eventType = entity.EventRecoveryDowngraded
	}

	update := &entity.ProfileUpdate{
		PlanID: entity.PlanFree,
		Status: entity.StatusInactive,
	}
	return r.write(ctx, profile, update, entity.OutcomeDowngraded, eventType, opts.Metadata)
}

func (r *Reconciler) write(
	ctx context.Context,
	profile *model.Profile,
	update *entity.ProfileUpdate,
	outcome entity.ReconcileOutcome,
	eventType entity.EventType,
	metadata map[string]interface{},
) (*entity.ReconcileResult, error) {
	if err := r.profiles.UpdateSubscription(ctx, profile.ID, update); err != nil {
		return nil, fmt.Errorf("failed to update profile subscription: %w", err)
	}

	customerID := update.CustomerID
	if customerID == "" && update.Provider != "" {
		customerID = profile.CustomerID(update.Provider)
	}

	result := &entity.ReconcileResult{
		Outcome:  outcome,
		Synced:   true,
		FromPlan: profile.Plan(),
		State: entity.SubscriptionState{
			UserID:            profile.ID,
			PlanID:            update.PlanID,
			Status:            update.Status,
			Provider:          update.Provider,
			SubscriptionID:    update.SubscriptionID,
			CustomerID:        customerID,
			CurrentPeriodEnd:  update.CurrentPeriodEnd,
			CancelAtPeriodEnd: update.CancelAtPeriodEnd,
		},
	}

	r.logger.Info("Profile subscription reconciled",
		zap.String("user_id", profile.ID),
		zap.String("outcome", string(outcome)),
		zap.String("from_plan", string(result.FromPlan)),
		zap.String("to_plan", string(update.PlanID)),
		zap.String("status", string(update.Status)),
		zap.String("provider", string(update.Provider)),
	)

	if r.cache != nil {
		r.cache.Invalidate(ctx, profile.ID)
	}

	r.events.Record(ctx, &entity.EventEntry{
		UserID:         profile.ID,
		EventType:      eventType,
		FromPlan:       result.FromPlan,
		ToPlan:         update.PlanID,
		SubscriptionID: update.SubscriptionID,
		CustomerID:     customerID,
		Provider:       update.Provider,
		Metadata:       withMetadata(metadata, "status", string(update.Status)),
	})

	if result.PlanChanged() {
		r.notifyPlanChange(ctx, result)
	}
	return result, nil
}

func (r *Reconciler) notifyPlanChange(ctx context.Context, result *entity.ReconcileResult) {
	if r.publisher == nil || r.planChannel == "" {
		return
	}
	msg := &PlanChangedMessage{
		UserID:    result.State.UserID,
		FromPlan:  result.FromPlan,
		ToPlan:    result.State.PlanID,
		Status:    result.State.Status,
		Provider:  result.State.Provider,
		ChangedAt: r.now().UTC(),
	}
	if err := r.publisher.Publish(ctx, r.planChannel, msg); err != nil {
		r.logger.Warn("Failed to publish plan change",
			zap.String("user_id", msg.UserID),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) loadProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := r.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, domainErrors.ErrProfileNotFound
	}
	return profile, nil
}

func (r *Reconciler) mapPlan(providerName entity.ProviderName, sub *entity.ProviderSubscription) entity.PlanID {
	return r.mappers[providerName].MapSubscription(sub)
}

// withMetadata returns a copy of base with key set.
func withMetadata(base map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[key] = value
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
