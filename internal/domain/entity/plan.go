package entity

// PlanID identifies a Brillo subscription plan.
type PlanID string

const (
	PlanFree       PlanID = "free"
	PlanProMonthly PlanID = "pro_monthly"
	PlanProYearly  PlanID = "pro_yearly"
)

// IsPaid reports whether the plan grants paid access.
func (p PlanID) IsPaid() bool {
	return p == PlanProMonthly || p == PlanProYearly
}

// OrFree returns p, or PlanFree when p is empty or unknown.
func (p PlanID) OrFree() PlanID {
	switch p {
	case PlanProMonthly, PlanProYearly:
		return p
	default:
		return PlanFree
	}
}

// SubscriptionStatus is the provider-reported lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusInactive   SubscriptionStatus = "inactive"
	StatusUnpaid     SubscriptionStatus = "unpaid"
)

// NormalizeStatus maps a raw provider status onto the statuses stored on a profile.
func NormalizeStatus(raw string) SubscriptionStatus {
	switch s := SubscriptionStatus(raw); s {
	case StatusActive, StatusTrialing, StatusPastDue, StatusCanceled,
		StatusIncomplete, StatusInactive, StatusUnpaid:
		return s
	case "incomplete_expired":
		return StatusCanceled
	default:
		// paused, empty and statuses added by providers later
		return StatusInactive
	}
}

// ProviderName identifies a billing provider.
type ProviderName string

const (
	ProviderStripe ProviderName = "stripe"
	ProviderPolar  ProviderName = "polar"
)

// ParseProvider returns the provider named by s.
func ParseProvider(s string) (ProviderName, bool) {
	switch p := ProviderName(s); p {
	case ProviderStripe, ProviderPolar:
		return p, true
	default:
		return "", false
	}
}
