package polar

import (
	"encoding/json"
	"time"
)

type listResource[T any] struct {
	Items      []T        `json:"items"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	TotalCount int `json:"total_count"`
	MaxPage    int `json:"max_page"`
}

type Customer struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	ExternalID string         `json:"external_id"`
	Metadata   map[string]any `json:"metadata"`
	DeletedAt  *time.Time     `json:"deleted_at"`
}

type CreateCustomerRequest struct {
	Email      string         `json:"email"`
	Name       string         `json:"name,omitempty"`
	ExternalID string         `json:"external_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Subscription struct {
	ID                 string         `json:"id"`
	Status             string         `json:"status"`
	CustomerID         string         `json:"customer_id"`
	ProductID          string         `json:"product_id"`
	CurrentPeriodStart *time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end"`
	CancelAtPeriodEnd  bool           `json:"cancel_at_period_end"`
	EndedAt            *time.Time     `json:"ended_at"`
	Metadata           map[string]any `json:"metadata"`
	Customer           *Customer      `json:"customer,omitempty"`
}

type Product struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurringInterval string `json:"recurring_interval"`
	IsArchived        bool   `json:"is_archived"`
}

// CustomerState is the payload of customer.state_changed.
type CustomerState struct {
	Customer
	ActiveSubscriptions []Subscription `json:"active_subscriptions"`
}

// Order is the payload of order.paid.
type Order struct {
	ID             string         `json:"id"`
	CustomerID     string         `json:"customer_id"`
	SubscriptionID string         `json:"subscription_id"`
	TotalAmount    int64          `json:"total_amount"`
	Currency       string         `json:"currency"`
	BillingReason  string         `json:"billing_reason"`
	Metadata       map[string]any `json:"metadata"`
	Customer       *Customer      `json:"customer,omitempty"`
}

// Event is a Polar webhook envelope.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type apiError struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}
