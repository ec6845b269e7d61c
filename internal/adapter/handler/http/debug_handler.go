package http

import (
	"context"
	"net/http"

	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	"github.com/jithinio/brillo-sub004/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductLister lists the organization's Polar products.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]polar.Product, error)
}

type DebugHandler struct {
	logger   *zap.Logger
	config   config.PolarConfig
	products ProductLister
}

// NewDebugHandler takes a nil lister when Polar is not configured.
func NewDebugHandler(logger *zap.Logger, cfg config.PolarConfig, products ProductLister) *DebugHandler {
	return &DebugHandler{
		logger:   logger,
		config:   cfg,
		products: products,
	}
}

type polarDebugResponse struct {
	Configured              bool            `json:"configured"`
	Server                  string          `json:"server"`
	AccessTokenPrefix       string          `json:"accessTokenPrefix,omitempty"`
	WebhookSecretConfigured bool            `json:"webhookSecretConfigured"`
	MonthlyProductID        string          `json:"monthlyProductId,omitempty"`
	YearlyProductID         string          `json:"yearlyProductId,omitempty"`
	MonthlyProductFound     bool            `json:"monthlyProductFound"`
	YearlyProductFound      bool            `json:"yearlyProductFound"`
	Products                []polar.Product `json:"products"`
	Error                   string          `json:"error,omitempty"`
}

// DebugPolar handles GET /debug-polar. Secrets are never returned in full.
func (h *DebugHandler) DebugPolar(c echo.Context) error {
	resp := polarDebugResponse{
		Configured:              h.config.Configured(),
		Server:                  h.config.Server,
		AccessTokenPrefix:       logger.MaskSecret(h.config.AccessToken, 12),
		WebhookSecretConfigured: h.config.WebhookSecret != "",
		MonthlyProductID:        h.config.MonthlyProductID,
		YearlyProductID:         h.config.YearlyProductID,
		Products:                []polar.Product{},
	}

	if h.products == nil {
		resp.Error = "Polar access token not configured"
		return c.JSON(http.StatusOK, resp)
	}

	products, err := h.products.ListProducts(c.Request().Context())
	if err != nil {
		h.logger.Warn("Failed to list Polar products", zap.Error(err))
		resp.Error = err.Error()
		return c.JSON(http.StatusOK, resp)
	}

	resp.Products = products
	for _, p := range products {
		switch p.ID {
		case h.config.MonthlyProductID:
			resp.MonthlyProductFound = true
		case h.config.YearlyProductID:
			resp.YearlyProductFound = true
		}
	}
	return c.JSON(http.StatusOK, resp)
}
