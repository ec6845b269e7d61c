package provider

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
)

// BillingProvider is the subset of a billing provider's API used for
// subscription reconciliation (Stripe, Polar).
type BillingProvider interface {
	// Name returns the provider name
	Name() entity.ProviderName

	// GetCustomer fetches a customer by ID; deleted customers yield ErrCustomerNotFound
	GetCustomer(ctx context.Context, customerID string) (*entity.Customer, error)

	// SearchCustomersByEmail may return ErrSearchUnavailable
	SearchCustomersByEmail(ctx context.Context, email string) ([]*entity.Customer, error)

	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*entity.Customer, error)

	// ListSubscriptions returns the customer's subscriptions of every status
	ListSubscriptions(ctx context.Context, customerID string) ([]*entity.ProviderSubscription, error)

	GetSubscription(ctx context.Context, subscriptionID string) (*entity.ProviderSubscription, error)
}

type CreateCustomerRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	UserID string `json:"user_id"`
}

// ProviderError carries the provider and operation of a failed API call
type ProviderError struct {
	Provider  entity.ProviderName
	Operation string
	Code      string
	Message   string
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return string(e.Provider) + " " + e.Operation + ": " + e.Code + ": " + e.Message
	}
	return string(e.Provider) + " " + e.Operation + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
