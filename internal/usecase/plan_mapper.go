package usecase

import "github.com/jithinio/brillo-sub004/internal/domain/entity"

// PlanMapper maps a provider price or product ID to a plan.
// Stripe mappers are configured with price IDs, Polar mappers with product IDs.
type PlanMapper struct {
	monthlyID string
	yearlyID  string
}

func NewPlanMapper(monthlyID, yearlyID string) *PlanMapper {
	return &PlanMapper{monthlyID: monthlyID, yearlyID: yearlyID}
}

// MapProductToPlan returns the configured plan for id; anything else is free.
func (m *PlanMapper) MapProductToPlan(id string) entity.PlanID {
	if m == nil || id == "" {
		return entity.PlanFree
	}
	switch id {
	case m.monthlyID:
		return entity.PlanProMonthly
	case m.yearlyID:
		return entity.PlanProYearly
	default:
		return entity.PlanFree
	}
}

// MapSubscription tries the subscription's price ID, then its product ID.
func (m *PlanMapper) MapSubscription(sub *entity.ProviderSubscription) entity.PlanID {
	if sub == nil {
		return entity.PlanFree
	}
	if plan := m.MapProductToPlan(sub.PriceID); plan.IsPaid() {
		return plan
	}
	return m.MapProductToPlan(sub.ProductID)
}
