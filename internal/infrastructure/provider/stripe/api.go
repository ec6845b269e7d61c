package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// API is the part of the Stripe API used for reconciliation.
type API interface {
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]*stripe.Customer, error)
	ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error)
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

const listLimit = 100

// clientAPI implements API with a per-instance client instead of the
// package-level stripe.Key.
type clientAPI struct {
	sc *client.API
}

func NewClientAPI(secretKey string) API {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &clientAPI{sc: sc}
}

func (a *clientAPI) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	return a.sc.Customers.Get(id, params)
}

func (a *clientAPI) SearchCustomers(ctx context.Context, query string) ([]*stripe.Customer, error) {
	params := &stripe.CustomerSearchParams{}
	params.Context = ctx
	params.Query = query
	params.Limit = stripe.Int64(10)

	var customers []*stripe.Customer
	iter := a.sc.Customers.Search(params)
	for iter.Next() {
		customers = append(customers, iter.Customer())
	}
	return customers, iter.Err()
}

func (a *clientAPI) ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	var customers []*stripe.Customer
	iter := a.sc.Customers.List(params)
	for iter.Next() {
		customers = append(customers, iter.Customer())
	}
	return customers, iter.Err()
}

func (a *clientAPI) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	params.Context = ctx
	return a.sc.Customers.New(params)
}

func (a *clientAPI) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(listLimit)

	var subs []*stripe.Subscription
	iter := a.sc.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	return subs, iter.Err()
}

func (a *clientAPI) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return a.sc.Subscriptions.Get(id, params)
}
