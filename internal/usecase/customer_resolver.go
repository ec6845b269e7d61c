package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
)

// CustomerResolver finds the provider customer of a user: stored ID first,
// then an email search, then (optionally) creation. Provider failures at
// any step fall through to the next step.
type CustomerResolver struct {
	provider provider.BillingProvider
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewCustomerResolver(
	billing provider.BillingProvider,
	profiles repository.ProfileRepository,
	logger *zap.Logger,
) *CustomerResolver {
	return &CustomerResolver{
		provider: billing,
		profiles: profiles,
		logger:   logger,
	}
}

// ResolveCustomer returns nil when no customer could be found or created.
// A resolved customer that differs from the stored one is saved on the profile.
func (r *CustomerResolver) ResolveCustomer(ctx context.Context, profile *model.Profile, allowCreate bool) *entity.Customer {
	name := r.provider.Name()
	log := r.logger.With(zap.String("user_id", profile.ID), zap.String("provider", string(name)))

	storedID := profile.CustomerID(name)
	if storedID != "" {
		customer, err := r.provider.GetCustomer(ctx, storedID)
		if err == nil && customer != nil {
			return customer
		}
		log.Warn("Stored customer lookup failed, searching by email",
			zap.String("customer_id", storedID),
			zap.Error(err),
		)
	}

	if profile.Email != "" {
		customers, err := r.provider.SearchCustomersByEmail(ctx, profile.Email)
		switch {
		case errors.Is(err, domainErrors.ErrSearchUnavailable):
			log.Info("Customer search unavailable, treating as not found", zap.Error(err))
		case err != nil:
			log.Warn("Customer search failed", zap.Error(err))
		default:
			if customer := pickByEmail(customers, profile.Email); customer != nil {
				r.remember(ctx, profile, customer, log)
				return customer
			}
		}
	}

	if !allowCreate || profile.Email == "" {
		return nil
	}

	customer, err := r.provider.CreateCustomer(ctx, &provider.CreateCustomerRequest{
		Email:  profile.Email,
		Name:   profile.DisplayName(),
		UserID: profile.ID,
	})
	if err != nil {
		log.Warn("Failed to create customer", zap.Error(err))
		return nil
	}

	log.Info("Created customer", zap.String("customer_id", customer.ID))
	r.remember(ctx, profile, customer, log)
	return customer
}

func (r *CustomerResolver) remember(ctx context.Context, profile *model.Profile, customer *entity.Customer, log *zap.Logger) {
	if customer.ID == "" || customer.ID == profile.CustomerID(r.provider.Name()) {
		return
	}
	if err := r.profiles.SetCustomerID(ctx, profile.ID, r.provider.Name(), customer.ID); err != nil {
		log.Error("Failed to store customer ID", zap.String("customer_id", customer.ID), zap.Error(err))
	}
}

// pickByEmail prefers an exact (case-insensitive) email match, else the first result.
func pickByEmail(customers []*entity.Customer, email string) *entity.Customer {
	if len(customers) == 0 {
		return nil
	}
	for _, c := range customers {
		if strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(email)) {
			return c
		}
	}
	return customers[0]
}
