package entity

import "time"

// ProviderSubscription is a provider subscription projected onto the fields
// the reconciler needs. It is never persisted as-is.
type ProviderSubscription struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	ProductID          string             `json:"product_id,omitempty"`
	PriceID            string             `json:"price_id,omitempty"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	// UserID is set when the provider payload carries it (metadata or external ID).
	UserID   string       `json:"user_id,omitempty"`
	Provider ProviderName `json:"provider"`
}

// PlanReference returns the identifier stored in the provider's price/product column.
func (s *ProviderSubscription) PlanReference() string {
	if s.PriceID != "" {
		return s.PriceID
	}
	return s.ProductID
}

type Customer struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Name     string       `json:"name,omitempty"`
	UserID   string       `json:"user_id,omitempty"`
	Provider ProviderName `json:"provider"`
}

// FetchResult is the outcome of listing a customer's subscriptions.
type FetchResult struct {
	// Subscription is the selected active or past_due subscription, if any.
	Subscription *ProviderSubscription
	// Total counts subscriptions of every status.
	Total int
	// LastStatus is the status of the most recent subscription when none qualified.
	LastStatus SubscriptionStatus
}

// NeverSubscribed reports whether the customer has no subscriptions at all.
func (r *FetchResult) NeverSubscribed() bool {
	return r.Total == 0
}

// Lapsed reports whether subscriptions exist but none is active or past_due.
func (r *FetchResult) Lapsed() bool {
	return r.Total > 0 && r.Subscription == nil
}

// SubscriptionState is the provider-agnostic subscription projection of a profile.
type SubscriptionState struct {
	UserID            string             `json:"userId"`
	PlanID            PlanID             `json:"planId"`
	Status            SubscriptionStatus `json:"status"`
	Provider          ProviderName       `json:"provider,omitempty"`
	SubscriptionID    string             `json:"subscriptionId,omitempty"`
	CustomerID        string             `json:"customerId,omitempty"`
	CurrentPeriodEnd  *time.Time         `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd bool               `json:"cancelAtPeriodEnd"`
}
