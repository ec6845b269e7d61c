package model

import (
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
)

// Profile is the Supabase profiles row. Rows are created by onboarding;
// this service only reads identity columns and writes subscription columns.
type Profile struct {
	ID       string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email    string  `gorm:"column:email;size:320" json:"email"`
	FullName *string `gorm:"column:full_name" json:"full_name,omitempty"`

	SubscriptionPlanID string  `gorm:"column:subscription_plan_id;not null;default:'free';index" json:"subscription_plan_id"`
	SubscriptionStatus *string `gorm:"column:subscription_status;size:32" json:"subscription_status,omitempty"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;index" json:"stripe_subscription_id,omitempty"`
	StripePriceID        *string `gorm:"column:stripe_price_id" json:"stripe_price_id,omitempty"`

	PolarCustomerID     *string `gorm:"column:polar_customer_id;index" json:"polar_customer_id,omitempty"`
	PolarSubscriptionID *string `gorm:"column:polar_subscription_id;index" json:"polar_subscription_id,omitempty"`
	PolarProductID      *string `gorm:"column:polar_product_id" json:"polar_product_id,omitempty"`

	SubscriptionCurrentPeriodStart *time.Time `gorm:"column:subscription_current_period_start" json:"subscription_current_period_start,omitempty"`
	SubscriptionCurrentPeriodEnd   *time.Time `gorm:"column:subscription_current_period_end" json:"subscription_current_period_end,omitempty"`
	CancelAtPeriodEnd              bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) Plan() entity.PlanID {
	return entity.PlanID(p.SubscriptionPlanID).OrFree()
}

func (p *Profile) Status() entity.SubscriptionStatus {
	if p.SubscriptionStatus == nil {
		return entity.StatusInactive
	}
	return entity.NormalizeStatus(*p.SubscriptionStatus)
}

func (p *Profile) DisplayName() string {
	if p.FullName == nil {
		return ""
	}
	return *p.FullName
}

// CustomerID returns the stored customer ID for provider.
func (p *Profile) CustomerID(provider entity.ProviderName) string {
	switch provider {
	case entity.ProviderStripe:
		return deref(p.StripeCustomerID)
	case entity.ProviderPolar:
		return deref(p.PolarCustomerID)
	}
	return ""
}

// SubscriptionID returns the stored subscription ID for provider.
func (p *Profile) SubscriptionID(provider entity.ProviderName) string {
	switch provider {
	case entity.ProviderStripe:
		return deref(p.StripeSubscriptionID)
	case entity.ProviderPolar:
		return deref(p.PolarSubscriptionID)
	}
	return ""
}

// ActiveProvider returns the provider holding the current subscription reference.
func (p *Profile) ActiveProvider() entity.ProviderName {
	switch {
	case deref(p.StripeSubscriptionID) != "":
		return entity.ProviderStripe
	case deref(p.PolarSubscriptionID) != "":
		return entity.ProviderPolar
	}
	return ""
}

// State projects the profile onto the provider-agnostic subscription state.
func (p *Profile) State() entity.SubscriptionState {
	provider := p.ActiveProvider()
	return entity.SubscriptionState{
		UserID:            p.ID,
		PlanID:            p.Plan(),
		Status:            p.Status(),
		Provider:          provider,
		SubscriptionID:    p.SubscriptionID(provider),
		CustomerID:        p.CustomerID(provider),
		CurrentPeriodEnd:  p.SubscriptionCurrentPeriodEnd,
		CancelAtPeriodEnd: p.CancelAtPeriodEnd,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
