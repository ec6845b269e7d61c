package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// userIDMetadataKeys are the metadata keys checkout and the web app set on
// Stripe objects to identify the Brillo user.
var userIDMetadataKeys = []string{"user_id", "userId", "supabase_user_id"}

// StripeProvider implements provider.BillingProvider for Stripe
type StripeProvider struct {
	api    API
	logger *zap.Logger
}

var _ provider.BillingProvider = (*StripeProvider)(nil)

func NewStripeProvider(api API, logger *zap.Logger) *StripeProvider {
	return &StripeProvider{
		api:    api,
		logger: logger,
	}
}

func (s *StripeProvider) Name() entity.ProviderName {
	return entity.ProviderStripe
}

func (s *StripeProvider) GetCustomer(ctx context.Context, customerID string) (*entity.Customer, error) {
	c, err := s.api.GetCustomer(ctx, customerID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrCustomerNotFound
		}
		return nil, wrap("get_customer", err)
	}
	if c.Deleted {
		return nil, domainErrors.ErrCustomerNotFound
	}
	return ToCustomer(c), nil
}

// SearchCustomersByEmail uses the Search API and falls back to listing by
// email where search is not available for the account.
func (s *StripeProvider) SearchCustomersByEmail(ctx context.Context, email string) ([]*entity.Customer, error) {
	found, err := s.api.SearchCustomers(ctx, fmt.Sprintf("email:'%s'", escapeQuery(email)))
	if err != nil {
		if !isSearchUnavailable(err) {
			return nil, wrap("search_customers", err)
		}
		s.logger.Info("Stripe customer search unavailable, listing by email", zap.Error(err))
		found, err = s.api.ListCustomersByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrSearchUnavailable, err)
		}
	}

	customers := make([]*entity.Customer, 0, len(found))
	for _, c := range found {
		if c == nil || c.Deleted {
			continue
		}
		customers = append(customers, ToCustomer(c))
	}
	return customers, nil
}

func (s *StripeProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*entity.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	params.AddMetadata("user_id", req.UserID)

	c, err := s.api.CreateCustomer(ctx, params)
	if err != nil {
		return nil, wrap("create_customer", err)
	}

	s.logger.Info("Created Stripe customer",
		zap.String("customer_id", c.ID),
		zap.String("user_id", req.UserID),
	)
	return ToCustomer(c), nil
}

func (s *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]*entity.ProviderSubscription, error) {
	subs, err := s.api.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, wrap("list_subscriptions", err)
	}

	out := make([]*entity.ProviderSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub != nil {
			out = append(out, ToSubscription(sub))
		}
	}
	return out, nil
}

func (s *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*entity.ProviderSubscription, error) {
	sub, err := s.api.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrSubscriptionNotFound
		}
		return nil, wrap("get_subscription", err)
	}
	return ToSubscription(sub), nil
}

// ToSubscription projects a Stripe subscription onto the reconciler's shape.
func ToSubscription(sub *stripe.Subscription) *entity.ProviderSubscription {
	out := &entity.ProviderSubscription{
		ID:                 sub.ID,
		Status:             entity.NormalizeStatus(string(sub.Status)),
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		UserID:             UserIDFromMetadata(sub.Metadata),
		Provider:           entity.ProviderStripe,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}
			out.PriceID = item.Price.ID
			if item.Price.Product != nil {
				out.ProductID = item.Price.Product.ID
			}
			break
		}
	}
	return out
}

func ToCustomer(c *stripe.Customer) *entity.Customer {
	return &entity.Customer{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		UserID:   UserIDFromMetadata(c.Metadata),
		Provider: entity.ProviderStripe,
	}
}

// UserIDFromMetadata returns the Brillo user ID stored in Stripe metadata.
func UserIDFromMetadata(metadata map[string]string) string {
	for _, key := range userIDMetadataKeys {
		if v := metadata[key]; v != "" {
			return v
		}
	}
	return ""
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func isNotFound(err error) bool {
	var se *stripe.Error
	return errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound
}

// isSearchUnavailable detects accounts and regions where the Search API is disabled.
func isSearchUnavailable(err error) bool {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.HTTPStatusCode {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
		return strings.Contains(strings.ToLower(se.Msg), "search")
	}
	return false
}

func wrap(operation string, err error) error {
	pe := &provider.ProviderError{
		Provider:  entity.ProviderStripe,
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		pe.Code = string(se.Code)
		pe.Message = se.Msg
	}
	return pe
}
