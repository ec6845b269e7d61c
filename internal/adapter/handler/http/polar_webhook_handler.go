package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PolarWebhookHandler struct {
	logger         *zap.Logger
	verifier       *polar.WebhookVerifier
	webhookService WebhookService
}

// NewPolarWebhookHandler takes a nil verifier when no webhook secret is configured.
func NewPolarWebhookHandler(logger *zap.Logger, verifier *polar.WebhookVerifier, webhookService WebhookService) *PolarWebhookHandler {
	return &PolarWebhookHandler{
		logger:         logger,
		verifier:       verifier,
		webhookService: webhookService,
	}
}

// HandleWebhook handles POST /polar/webhook
func (h *PolarWebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	if err := h.verifier.Verify(c.Request().Header, body); err != nil {
		if errors.Is(err, domainErrors.ErrWebhookSecretMissing) {
			h.logger.Error("Polar webhook secret not configured")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Webhook secret not configured"})
		}
		h.logger.Warn("Polar webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Webhook signature verification failed"})
	}

	event, err := polar.ParseEvent(body)
	if err != nil {
		h.logger.Warn("Invalid Polar webhook payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error parsing webhook"})
	}

	h.logger.Info("Polar webhook received",
		zap.String("type", event.Type),
		zap.String("id", c.Request().Header.Get(polar.HeaderWebhookID)),
	)

	if err := h.dispatch(c, event); err != nil {
		if errors.Is(err, errMalformedPayload) {
			h.logger.Warn("Malformed Polar webhook payload", zap.String("type", event.Type), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error parsing webhook"})
		}
		h.logger.Error("Polar webhook processing failed",
			zap.String("type", event.Type),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook processing failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *PolarWebhookHandler) dispatch(c echo.Context, event *polar.Event) error {
	ctx := c.Request().Context()

	switch event.Type {
	case "subscription.created", "subscription.updated", "subscription.active", "subscription.uncanceled":
		sub, err := polar.DecodeSubscription(event.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		eventType := entity.EventSubscriptionUpdated
		if event.Type == "subscription.created" {
			eventType = entity.EventSubscriptionCreated
		}
		return h.webhookService.HandleSubscriptionChanged(ctx, sub, eventType)

	case "subscription.canceled", "subscription.revoked":
		sub, err := polar.DecodeSubscription(event.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		return h.webhookService.HandleSubscriptionCanceled(ctx, sub, event.Type == "subscription.revoked")

	case "customer.state_changed":
		state, err := polar.DecodeCustomerState(event.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		return h.webhookService.HandleCustomerStateChanged(ctx, entity.ProviderPolar, &usecase.CustomerState{
			UserID:        state.UserID(),
			CustomerID:    state.ID,
			Subscriptions: state.Subscriptions(),
		})

	case "order.paid":
		order, err := polar.DecodeOrder(event.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		if order.SubscriptionID == "" {
			h.logger.Debug("Ignoring one-time Polar order", zap.String("order_id", order.ID))
			return nil
		}
		customerID := order.CustomerID
		if customerID == "" && order.Customer != nil {
			customerID = order.Customer.ID
		}
		return h.webhookService.HandlePaymentSucceeded(ctx, entity.ProviderPolar, &usecase.PaymentInfo{
			UserID:         order.UserID(),
			CustomerID:     customerID,
			SubscriptionID: order.SubscriptionID,
			InvoiceID:      order.ID,
			Amount:         minorUnits(order.TotalAmount, order.Currency),
			Currency:       order.Currency,
			Reason:         order.BillingReason,
		})

	default:
		h.logger.Warn("Unhandled Polar event type", zap.String("type", event.Type))
		return nil
	}
}
