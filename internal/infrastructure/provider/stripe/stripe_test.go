package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

type fakeAPI struct {
	customers   map[string]*stripe.Customer
	searchErr   error
	listed      []*stripe.Customer
	listErr     error
	created     *stripe.CustomerParams
	subs        []*stripe.Subscription
	getSubErr   error
	searchQuery string
}

func (f *fakeAPI) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, &stripe.Error{HTTPStatusCode: http.StatusNotFound, Code: stripe.ErrorCodeResourceMissing, Msg: "No such customer"}
}

func (f *fakeAPI) SearchCustomers(ctx context.Context, query string) ([]*stripe.Customer, error) {
	f.searchQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*stripe.Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeAPI) ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error) {
	return f.listed, f.listErr
}

func (f *fakeAPI) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	f.created = params
	return &stripe.Customer{ID: "cus_created", Email: *params.Email, Metadata: params.Metadata}, nil
}

func (f *fakeAPI) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	return f.subs, nil
}

func (f *fakeAPI) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if f.getSubErr != nil {
		return nil, f.getSubErr
	}
	for _, s := range f.subs {
		if s != nil && s.ID == id {
			return s, nil
		}
	}
	return nil, &stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such subscription"}
}

func testSubscription() *stripe.Subscription {
	return &stripe.Subscription{
		ID:                 "sub_1",
		Status:             stripe.SubscriptionStatusActive,
		Customer:           &stripe.Customer{ID: "cus_1"},
		CurrentPeriodStart: 1748736000,
		CurrentPeriodEnd:   1751328000,
		CancelAtPeriodEnd:  true,
		Metadata:           map[string]string{"userId": "user-1"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_monthly", Product: &stripe.Product{ID: "prod_pro"}}},
			},
		},
	}
}

func TestToSubscription(t *testing.T) {
	sub := ToSubscription(testSubscription())

	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, "price_monthly", sub.PriceID)
	assert.Equal(t, "prod_pro", sub.ProductID)
	assert.Equal(t, entity.StatusActive, sub.Status)
	assert.Equal(t, "user-1", sub.UserID)
	assert.Equal(t, entity.ProviderStripe, sub.Provider)
	assert.True(t, sub.CancelAtPeriodEnd)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), *sub.CurrentPeriodEnd)
}

func TestToSubscription_MissingFields(t *testing.T) {
	sub := ToSubscription(&stripe.Subscription{ID: "sub_2", Status: "incomplete_expired"})

	assert.Equal(t, entity.StatusCanceled, sub.Status)
	assert.Empty(t, sub.CustomerID)
	assert.Empty(t, sub.PriceID)
	assert.Nil(t, sub.CurrentPeriodStart)
	assert.Nil(t, sub.CurrentPeriodEnd)
}

func TestGetCustomer(t *testing.T) {
	api := &fakeAPI{customers: map[string]*stripe.Customer{
		"cus_1":   {ID: "cus_1", Email: "a@example.com"},
		"cus_del": {ID: "cus_del", Deleted: true},
	}}
	p := NewStripeProvider(api, zap.NewNop())

	c, err := p.GetCustomer(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", c.Email)

	_, err = p.GetCustomer(context.Background(), "cus_del")
	assert.ErrorIs(t, err, domainErrors.ErrCustomerNotFound)

	_, err = p.GetCustomer(context.Background(), "cus_missing")
	assert.ErrorIs(t, err, domainErrors.ErrCustomerNotFound)
}

func TestSearchCustomersByEmail(t *testing.T) {
	api := &fakeAPI{customers: map[string]*stripe.Customer{
		"cus_1": {ID: "cus_1", Email: "o'neil@example.com"},
	}}
	p := NewStripeProvider(api, zap.NewNop())

	customers, err := p.SearchCustomersByEmail(context.Background(), "o'neil@example.com")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, `email:'o\'neil@example.com'`, api.searchQuery)
}

func TestSearchCustomersByEmail_FallsBackToList(t *testing.T) {
	api := &fakeAPI{
		searchErr: &stripe.Error{HTTPStatusCode: http.StatusBadRequest, Msg: "Search is not available in your region"},
		listed:    []*stripe.Customer{{ID: "cus_listed", Email: "a@example.com"}, {ID: "cus_gone", Deleted: true}},
	}
	p := NewStripeProvider(api, zap.NewNop())

	customers, err := p.SearchCustomersByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "cus_listed", customers[0].ID)
}

func TestSearchCustomersByEmail_Unavailable(t *testing.T) {
	api := &fakeAPI{
		searchErr: &stripe.Error{HTTPStatusCode: http.StatusForbidden, Msg: "search disabled"},
		listErr:   errors.New("network down"),
	}
	p := NewStripeProvider(api, zap.NewNop())

	_, err := p.SearchCustomersByEmail(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, domainErrors.ErrSearchUnavailable)
}

func TestSearchCustomersByEmail_OtherError(t *testing.T) {
	api := &fakeAPI{searchErr: &stripe.Error{HTTPStatusCode: http.StatusInternalServerError, Code: "api_error", Msg: "boom"}}
	p := NewStripeProvider(api, zap.NewNop())

	_, err := p.SearchCustomersByEmail(context.Background(), "a@example.com")
	var pe *provider.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "search_customers", pe.Operation)
	assert.Equal(t, "api_error", pe.Code)
	assert.NotErrorIs(t, err, domainErrors.ErrSearchUnavailable)
}

func TestCreateCustomer(t *testing.T) {
	api := &fakeAPI{}
	p := NewStripeProvider(api, zap.NewNop())

	c, err := p.CreateCustomer(context.Background(), &provider.CreateCustomerRequest{
		Email:  "a@example.com",
		UserID: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_created", c.ID)
	assert.Equal(t, "user-1", c.UserID)
	assert.Nil(t, api.created.Name)
}

func TestListAndGetSubscriptions(t *testing.T) {
	api := &fakeAPI{subs: []*stripe.Subscription{testSubscription(), nil}}
	p := NewStripeProvider(api, zap.NewNop())

	subs, err := p.ListSubscriptions(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = p.GetSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, domainErrors.ErrSubscriptionNotFound)
}
