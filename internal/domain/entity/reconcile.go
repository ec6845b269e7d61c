package entity

import "time"

type ReconcileOutcome string

const (
	OutcomeUpdated    ReconcileOutcome = "updated"
	OutcomePreserved  ReconcileOutcome = "preserved"
	OutcomeDowngraded ReconcileOutcome = "downgraded"
	OutcomeCanceled   ReconcileOutcome = "canceled"
)

type ReconcileResult struct {
	Outcome  ReconcileOutcome  `json:"outcome"`
	Synced   bool              `json:"synced"`
	FromPlan PlanID            `json:"fromPlan"`
	State    SubscriptionState `json:"state"`
}

// PlanChanged reports whether the write moved the user to another plan.
func (r *ReconcileResult) PlanChanged() bool {
	return r.FromPlan != r.State.PlanID
}

// ProfileUpdate is the set of subscription columns written to a profile.
// Provider selects which provider's reference columns are written; the other
// provider's subscription and price/product columns are cleared. An empty
// Provider clears the references of both providers.
type ProfileUpdate struct {
	PlanID             PlanID
	Status             SubscriptionStatus
	Provider           ProviderName
	CustomerID         string
	SubscriptionID     string
	PlanReference      string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// EventType is the type of a subscription_events row.
type EventType string

const (
	EventSubscriptionCreated  EventType = "subscription_created"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventSubscriptionRevoked  EventType = "subscription_revoked"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventCustomerStateChanged EventType = "customer_state_changed"
	EventCheckoutCompleted    EventType = "checkout_completed"
	EventSynced               EventType = "synced"
	EventSyncPreserved        EventType = "sync_preserved"
	EventSyncDowngraded       EventType = "sync_downgraded"
	EventRecoveryDowngraded   EventType = "recovery_downgraded"
)

// EventEntry is one audit record handed to the event log.
type EventEntry struct {
	UserID         string
	EventType      EventType
	FromPlan       PlanID
	ToPlan         PlanID
	SubscriptionID string
	CustomerID     string
	Provider       ProviderName
	Metadata       map[string]interface{}
}
