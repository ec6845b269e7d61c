package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
)

// memoryProfiles applies profile updates the way the gorm repository does.
type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	updates  int
	failWith error
}

func newMemoryProfiles(profiles ...*model.Profile) *memoryProfiles {
	m := &memoryProfiles{profiles: make(map[string]*model.Profile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memoryProfiles) get(id string) *model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[id]
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (m *memoryProfiles) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	return m.get(userID), nil
}

func (m *memoryProfiles) GetByCustomerID(ctx context.Context, name entity.ProviderName, customerID string) (*model.Profile, error) {
	m.mu.Lock()
	var id string
	for _, p := range m.profiles {
		if p.CustomerID(name) == customerID {
			id = p.ID
		}
	}
	m.mu.Unlock()
	return m.get(id), nil
}

func (m *memoryProfiles) GetBySubscriptionID(ctx context.Context, name entity.ProviderName, subscriptionID string) (*model.Profile, error) {
	m.mu.Lock()
	var id string
	for _, p := range m.profiles {
		if p.SubscriptionID(name) == subscriptionID {
			id = p.ID
		}
	}
	m.mu.Unlock()
	return m.get(id), nil
}

func (m *memoryProfiles) UpdateSubscription(ctx context.Context, userID string, u *entity.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	p, ok := m.profiles[userID]
	if !ok {
		return errors.New("no row")
	}
	m.updates++

	status := string(u.Status)
	p.SubscriptionPlanID = string(u.PlanID)
	p.SubscriptionStatus = &status
	p.SubscriptionCurrentPeriodStart = u.CurrentPeriodStart
	p.SubscriptionCurrentPeriodEnd = u.CurrentPeriodEnd
	p.CancelAtPeriodEnd = u.CancelAtPeriodEnd

	p.StripeSubscriptionID, p.StripePriceID = nil, nil
	p.PolarSubscriptionID, p.PolarProductID = nil, nil
	switch u.Provider {
	case entity.ProviderStripe:
		p.StripeSubscriptionID, p.StripePriceID = ptr(u.SubscriptionID), ptr(u.PlanReference)
		if u.CustomerID != "" {
			p.StripeCustomerID = ptr(u.CustomerID)
		}
	case entity.ProviderPolar:
		p.PolarSubscriptionID, p.PolarProductID = ptr(u.SubscriptionID), ptr(u.PlanReference)
		if u.CustomerID != "" {
			p.PolarCustomerID = ptr(u.CustomerID)
		}
	}
	return nil
}

func (m *memoryProfiles) SetCustomerID(ctx context.Context, userID string, name entity.ProviderName, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return errors.New("no row")
	}
	switch name {
	case entity.ProviderStripe:
		p.StripeCustomerID = ptr(customerID)
	case entity.ProviderPolar:
		p.PolarCustomerID = ptr(customerID)
	}
	return nil
}

func (m *memoryProfiles) ListPaid(ctx context.Context) ([]*model.Profile, error) {
	m.mu.Lock()
	var ids []string
	for _, p := range m.profiles {
		if p.Plan().IsPaid() {
			ids = append(ids, p.ID)
		}
	}
	m.mu.Unlock()
	out := make([]*model.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.get(id))
	}
	return out, nil
}

type memoryEvents struct {
	mu       sync.Mutex
	events   []*model.SubscriptionEvent
	failWith error
}

func (m *memoryEvents) Create(ctx context.Context, event *model.SubscriptionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.events = append(m.events, event)
	return nil
}

func (m *memoryEvents) ofType(t entity.EventType) []*model.SubscriptionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SubscriptionEvent
	for _, e := range m.events {
		if e.EventType == string(t) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memoryEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// fakeProvider is an in-memory billing provider.
type fakeProvider struct {
	name          entity.ProviderName
	customers     map[string]*entity.Customer
	subscriptions map[string][]*entity.ProviderSubscription
	searchErr     error
	listErr       error
	getErr        error
	created       []*provider.CreateCustomerRequest
}

func newFakeProvider(name entity.ProviderName) *fakeProvider {
	return &fakeProvider{
		name:          name,
		customers:     make(map[string]*entity.Customer),
		subscriptions: make(map[string][]*entity.ProviderSubscription),
	}
}

func (f *fakeProvider) Name() entity.ProviderName { return f.name }

func (f *fakeProvider) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, domainErrors.ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeProvider) SearchCustomersByEmail(ctx context.Context, email string) ([]*entity.Customer, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*entity.Customer
	for _, c := range f.customers {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*entity.Customer, error) {
	f.created = append(f.created, req)
	c := &entity.Customer{ID: "cus_new", Email: req.Email, Name: req.Name, UserID: req.UserID, Provider: f.name}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]*entity.ProviderSubscription, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subscriptions[customerID], nil
}

func (f *fakeProvider) GetSubscription(ctx context.Context, id string) (*entity.ProviderSubscription, error) {
	for _, subs := range f.subscriptions {
		for _, s := range subs {
			if s.ID == id {
				cp := *s
				return &cp, nil
			}
		}
	}
	return nil, domainErrors.ErrSubscriptionNotFound
}

type memoryCache struct {
	states      map[string]*entity.SubscriptionState
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{states: make(map[string]*entity.SubscriptionState)}
}

func (c *memoryCache) Get(ctx context.Context, userID string) (*entity.SubscriptionState, bool) {
	s, ok := c.states[userID]
	return s, ok
}

func (c *memoryCache) Set(ctx context.Context, state *entity.SubscriptionState) {
	c.states[state.UserID] = state
}

func (c *memoryCache) Invalidate(ctx context.Context, userID string) {
	delete(c.states, userID)
	c.invalidated = append(c.invalidated, userID)
}

type recordingPublisher struct {
	channel  string
	messages []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.channel = channel
	p.messages = append(p.messages, message)
	return nil
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
