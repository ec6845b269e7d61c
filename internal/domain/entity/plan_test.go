package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]SubscriptionStatus{
		"active":             StatusActive,
		"past_due":           StatusPastDue,
		"trialing":           StatusTrialing,
		"incomplete_expired": StatusCanceled,
		"paused":             StatusInactive,
		"":                   StatusInactive,
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizeStatus(raw), raw)
	}
}

func TestPlanID(t *testing.T) {
	assert.True(t, PlanProMonthly.IsPaid())
	assert.True(t, PlanProYearly.IsPaid())
	assert.False(t, PlanFree.IsPaid())
	assert.Equal(t, PlanFree, PlanID("enterprise").OrFree())
	assert.Equal(t, PlanFree, PlanID("").OrFree())
}

func TestFetchResult(t *testing.T) {
	never := &FetchResult{}
	assert.True(t, never.NeverSubscribed())
	assert.False(t, never.Lapsed())

	lapsed := &FetchResult{Total: 2, LastStatus: StatusCanceled}
	assert.True(t, lapsed.Lapsed())

	active := &FetchResult{Total: 1, Subscription: &ProviderSubscription{ID: "sub_1"}}
	assert.False(t, active.Lapsed())
}
