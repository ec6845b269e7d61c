package polar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"go.uber.org/zap"
)

var userIDMetadataKeys = []string{"user_id", "userId", "supabase_user_id"}

// PolarProvider implements provider.BillingProvider for Polar
type PolarProvider struct {
	client *Client
	logger *zap.Logger
}

var _ provider.BillingProvider = (*PolarProvider)(nil)

func NewPolarProvider(client *Client, logger *zap.Logger) *PolarProvider {
	return &PolarProvider{
		client: client,
		logger: logger,
	}
}

func (p *PolarProvider) Name() entity.ProviderName {
	return entity.ProviderPolar
}

// Client exposes the REST client for operator endpoints.
func (p *PolarProvider) Client() *Client {
	return p.client
}

func (p *PolarProvider) GetCustomer(ctx context.Context, customerID string) (*entity.Customer, error) {
	c, err := p.client.GetCustomer(ctx, customerID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrCustomerNotFound
		}
		return nil, err
	}
	if c.DeletedAt != nil {
		return nil, domainErrors.ErrCustomerNotFound
	}
	return ToCustomer(c), nil
}

func (p *PolarProvider) SearchCustomersByEmail(ctx context.Context, email string) ([]*entity.Customer, error) {
	found, err := p.client.ListCustomersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	customers := make([]*entity.Customer, 0, len(found))
	for i := range found {
		if found[i].DeletedAt != nil {
			continue
		}
		customers = append(customers, ToCustomer(&found[i]))
	}
	return customers, nil
}

// CreateCustomer links the Polar customer to the user through external_id.
func (p *PolarProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*entity.Customer, error) {
	c, err := p.client.CreateCustomer(ctx, &CreateCustomerRequest{
		Email:      req.Email,
		Name:       req.Name,
		ExternalID: req.UserID,
		Metadata:   map[string]any{"user_id": req.UserID},
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Created Polar customer",
		zap.String("customer_id", c.ID),
		zap.String("user_id", req.UserID),
	)
	return ToCustomer(c), nil
}

func (p *PolarProvider) ListSubscriptions(ctx context.Context, customerID string) ([]*entity.ProviderSubscription, error) {
	subs, err := p.client.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.ProviderSubscription, 0, len(subs))
	for i := range subs {
		out = append(out, ToSubscription(&subs[i]))
	}
	return out, nil
}

func (p *PolarProvider) GetSubscription(ctx context.Context, subscriptionID string) (*entity.ProviderSubscription, error) {
	sub, err := p.client.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return ToSubscription(sub), nil
}

func ToCustomer(c *Customer) *entity.Customer {
	return &entity.Customer{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		UserID:   userID(c.ExternalID, c.Metadata),
		Provider: entity.ProviderPolar,
	}
}

// ToSubscription projects a Polar subscription. Polar plans are identified
// by product, so PriceID stays empty.
func ToSubscription(sub *Subscription) *entity.ProviderSubscription {
	out := &entity.ProviderSubscription{
		ID:                 sub.ID,
		CustomerID:         sub.CustomerID,
		ProductID:          sub.ProductID,
		Status:             entity.NormalizeStatus(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		UserID:             userID("", sub.Metadata),
		Provider:           entity.ProviderPolar,
	}
	if sub.Customer != nil {
		if out.CustomerID == "" {
			out.CustomerID = sub.Customer.ID
		}
		if out.UserID == "" {
			out.UserID = userID(sub.Customer.ExternalID, sub.Customer.Metadata)
		}
	}
	return out
}

// DecodeSubscription decodes the data of a subscription.* event.
func DecodeSubscription(data json.RawMessage) (*entity.ProviderSubscription, error) {
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("invalid subscription payload: %w", err)
	}
	if sub.ID == "" {
		return nil, errors.New("invalid subscription payload: missing id")
	}
	return ToSubscription(&sub), nil
}

// DecodeCustomerState decodes the data of a customer.state_changed event.
func DecodeCustomerState(data json.RawMessage) (*CustomerState, error) {
	var state CustomerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("invalid customer state payload: %w", err)
	}
	return &state, nil
}

// DecodeOrder decodes the data of an order.* event.
func DecodeOrder(data json.RawMessage) (*Order, error) {
	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}
	return &order, nil
}

// UserID returns the Brillo user the state belongs to.
func (s *CustomerState) UserID() string {
	return userID(s.ExternalID, s.Metadata)
}

// Subscriptions returns the active subscriptions projected for reconciliation.
func (s *CustomerState) Subscriptions() []*entity.ProviderSubscription {
	out := make([]*entity.ProviderSubscription, 0, len(s.ActiveSubscriptions))
	for i := range s.ActiveSubscriptions {
		sub := ToSubscription(&s.ActiveSubscriptions[i])
		if sub.CustomerID == "" {
			sub.CustomerID = s.ID
		}
		out = append(out, sub)
	}
	return out
}

// UserID returns the Brillo user the order belongs to.
func (o *Order) UserID() string {
	if id := userID("", o.Metadata); id != "" {
		return id
	}
	if o.Customer != nil {
		return userID(o.Customer.ExternalID, o.Customer.Metadata)
	}
	return ""
}

func userID(externalID string, metadata map[string]any) string {
	if externalID != "" {
		return externalID
	}
	for _, key := range userIDMetadataKeys {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
