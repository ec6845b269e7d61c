package provider

import (
	"fmt"

	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	polarProvider "github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	stripeProvider "github.com/jithinio/brillo-sub004/internal/infrastructure/provider/stripe"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"go.uber.org/zap"
)

// Factory creates billing providers from configuration
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns the named provider, or ErrProviderNotConfigured when
// its credentials are missing
func (f *Factory) GetProvider(name entity.ProviderName) (provider.BillingProvider, error) {
	switch name {
	case entity.ProviderStripe:
		return f.createStripeProvider()
	case entity.ProviderPolar:
		return f.createPolarProvider()
	default:
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrUnknownProvider, name)
	}
}

// Providers returns every configured provider; unconfigured providers are skipped
func (f *Factory) Providers() usecase.Providers {
	providers := usecase.Providers{}
	for _, name := range []entity.ProviderName{entity.ProviderStripe, entity.ProviderPolar} {
		p, err := f.GetProvider(name)
		if err != nil {
			f.logger.Info("Billing provider disabled",
				zap.String("provider", string(name)),
				zap.Error(err))
			continue
		}
		providers[name] = p
	}
	return providers
}

// PlanMappers returns a mapper per provider: Stripe maps price IDs, Polar maps product IDs
func (f *Factory) PlanMappers() map[entity.ProviderName]*usecase.PlanMapper {
	return map[entity.ProviderName]*usecase.PlanMapper{
		entity.ProviderStripe: usecase.NewPlanMapper(f.config.Stripe.MonthlyPriceID, f.config.Stripe.YearlyPriceID),
		entity.ProviderPolar:  usecase.NewPlanMapper(f.config.Polar.MonthlyProductID, f.config.Polar.YearlyProductID),
	}
}

// PolarClient returns the Polar REST client, or nil when Polar is not configured
func (f *Factory) PolarClient() *polarProvider.Client {
	if !f.config.Polar.Configured() {
		return nil
	}
	return polarProvider.NewClient(
		polarProvider.BaseURL(f.config.Polar.Server),
		f.config.Polar.AccessToken,
		f.config.Polar.Timeout,
		f.logger.Named("polar"),
	)
}

func (f *Factory) createStripeProvider() (provider.BillingProvider, error) {
	if !f.config.Stripe.Configured() {
		return nil, fmt.Errorf("stripe: %w", domainErrors.ErrProviderNotConfigured)
	}

	return stripeProvider.NewStripeProvider(
		stripeProvider.NewClientAPI(f.config.Stripe.SecretKey),
		f.logger.Named("stripe"),
	), nil
}

func (f *Factory) createPolarProvider() (provider.BillingProvider, error) {
	client := f.PolarClient()
	if client == nil {
		return nil, fmt.Errorf("polar: %w", domainErrors.ErrProviderNotConfigured)
	}

	return polarProvider.NewPolarProvider(client, f.logger.Named("polar")), nil
}
