package usecase_test

import (
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"go.uber.org/zap"
)

const (
	testUserID       = "11111111-1111-1111-1111-111111111111"
	monthlyPriceID   = "price_monthly"
	yearlyPriceID    = "price_yearly"
	monthlyProductID = "prod_monthly"
	yearlyProductID  = "prod_yearly"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	profiles   *memoryProfiles
	events     *memoryEvents
	cache      *memoryCache
	publisher  *recordingPublisher
	stripe     *fakeProvider
	polar      *fakeProvider
	reconciler *usecase.Reconciler
	sync       *usecase.SyncService
	webhooks   *usecase.WebhookService
}

func newFixture(profiles ...*model.Profile) *fixture {
	logger := zap.NewNop()
	f := &fixture{
		profiles:  newMemoryProfiles(profiles...),
		events:    &memoryEvents{},
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
		stripe:    newFakeProvider(entity.ProviderStripe),
		polar:     newFakeProvider(entity.ProviderPolar),
	}

	mappers := map[entity.ProviderName]*usecase.PlanMapper{
		entity.ProviderStripe: usecase.NewPlanMapper(monthlyPriceID, yearlyPriceID),
		entity.ProviderPolar:  usecase.NewPlanMapper(monthlyProductID, yearlyProductID),
	}
	eventLog := usecase.NewEventLog(f.events, logger)
	f.reconciler = usecase.NewReconciler(f.profiles, eventLog, mappers, logger,
		usecase.WithStatusCache(f.cache),
		usecase.WithPlanNotifier(f.publisher, "plan-changes"),
		usecase.WithClock(func() time.Time { return fixedNow }),
	)

	providers := usecase.Providers{
		entity.ProviderStripe: f.stripe,
		entity.ProviderPolar:  f.polar,
	}
	f.sync = usecase.NewSyncService(providers, entity.ProviderStripe, f.profiles, f.reconciler, f.cache, logger)
	f.webhooks = usecase.NewWebhookService(providers, f.profiles, f.reconciler, eventLog, logger)
	return f
}

func newProfile(plan entity.PlanID) *model.Profile {
	status := string(entity.StatusActive)
	if !plan.IsPaid() {
		status = string(entity.StatusInactive)
	}
	return &model.Profile{
		ID:                 testUserID,
		Email:              "a@b.com",
		FullName:           ptr("Ada Lovelace"),
		SubscriptionPlanID: string(plan),
		SubscriptionStatus: &status,
	}
}

func at(d time.Duration) *time.Time {
	t := fixedNow.Add(d)
	return &t
}

func stripeSub(id, customerID, priceID string, status entity.SubscriptionStatus) *entity.ProviderSubscription {
	return &entity.ProviderSubscription{
		ID:                 id,
		CustomerID:         customerID,
		PriceID:            priceID,
		Status:             status,
		CurrentPeriodStart: at(-24 * time.Hour),
		CurrentPeriodEnd:   at(29 * 24 * time.Hour),
		Provider:           entity.ProviderStripe,
	}
}
