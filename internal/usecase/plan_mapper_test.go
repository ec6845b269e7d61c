package usecase_test

import (
	"testing"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/stretchr/testify/assert"
)

func TestPlanMapper_MapProductToPlan(t *testing.T) {
	mapper := usecase.NewPlanMapper(monthlyPriceID, yearlyPriceID)

	tests := []struct {
		name string
		id   string
		want entity.PlanID
	}{
		{"monthly", monthlyPriceID, entity.PlanProMonthly},
		{"yearly", yearlyPriceID, entity.PlanProYearly},
		{"unknown", "price_other", entity.PlanFree},
		{"empty", "", entity.PlanFree},
		{"case differs", "PRICE_MONTHLY", entity.PlanFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.MapProductToPlan(tt.id))
		})
	}
}

func TestPlanMapper_UnconfiguredIDsNeverMatchEmpty(t *testing.T) {
	mapper := usecase.NewPlanMapper("", "")
	assert.Equal(t, entity.PlanFree, mapper.MapProductToPlan(""))

	var nilMapper *usecase.PlanMapper
	assert.Equal(t, entity.PlanFree, nilMapper.MapProductToPlan(monthlyPriceID))
}

func TestPlanMapper_MapSubscription(t *testing.T) {
	mapper := usecase.NewPlanMapper(monthlyProductID, yearlyProductID)

	assert.Equal(t, entity.PlanProYearly, mapper.MapSubscription(&entity.ProviderSubscription{ProductID: yearlyProductID}))
	assert.Equal(t, entity.PlanProMonthly, mapper.MapSubscription(&entity.ProviderSubscription{PriceID: "price_x", ProductID: monthlyProductID}))
	assert.Equal(t, entity.PlanFree, mapper.MapSubscription(&entity.ProviderSubscription{ProductID: "prod_x"}))
	assert.Equal(t, entity.PlanFree, mapper.MapSubscription(nil))
}
