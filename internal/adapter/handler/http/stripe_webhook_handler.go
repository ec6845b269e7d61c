package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	stripeProvider "github.com/jithinio/brillo-sub004/internal/infrastructure/provider/stripe"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// maxWebhookBodyBytes matches the payload limit Stripe documents for webhooks.
const maxWebhookBodyBytes = int64(65536)

// errMalformedPayload marks verified events whose data cannot be decoded;
// they are answered with 400 instead of being retried.
var errMalformedPayload = errors.New("malformed webhook payload")

type StripeWebhookHandler struct {
	logger         *zap.Logger
	webhookSecret  string
	webhookService WebhookService
}

func NewStripeWebhookHandler(logger *zap.Logger, webhookSecret string, webhookService WebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		logger:         logger,
		webhookSecret:  webhookSecret,
		webhookService: webhookService,
	}
}

// HandleWebhook handles POST /stripe/webhook
func (h *StripeWebhookHandler) HandleWebhook(c echo.Context) error {
	if h.webhookSecret == "" {
		h.logger.Error("Stripe webhook secret not configured")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Webhook secret not configured"})
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.Request().Header.Get("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Webhook signature verification failed"})
	}

	h.logger.Info("Stripe webhook received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Time("created", time.Unix(event.Created, 0)),
	)

	if err := h.dispatch(c, &event); err != nil {
		if errors.Is(err, errMalformedPayload) {
			h.logger.Warn("Malformed Stripe webhook payload", zap.String("type", string(event.Type)), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error parsing webhook"})
		}
		h.logger.Error("Stripe webhook processing failed",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook processing failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *StripeWebhookHandler) dispatch(c echo.Context, event *stripe.Event) error {
	ctx := c.Request().Context()

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: subscription: %v", errMalformedPayload, err)
		}
		eventType := entity.EventSubscriptionUpdated
		if event.Type == stripe.EventTypeCustomerSubscriptionCreated {
			eventType = entity.EventSubscriptionCreated
		}
		return h.webhookService.HandleSubscriptionChanged(ctx, stripeProvider.ToSubscription(&sub), eventType)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: subscription: %v", errMalformedPayload, err)
		}
		return h.webhookService.HandleSubscriptionCanceled(ctx, stripeProvider.ToSubscription(&sub), false)

	case stripe.EventTypeInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%w: invoice: %v", errMalformedPayload, err)
		}
		return h.webhookService.HandlePaymentSucceeded(ctx, entity.ProviderStripe, paymentFromInvoice(&invoice, invoice.AmountPaid))

	case stripe.EventTypeInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%w: invoice: %v", errMalformedPayload, err)
		}
		return h.webhookService.HandlePaymentFailed(ctx, entity.ProviderStripe, paymentFromInvoice(&invoice, invoice.AmountDue))

	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%w: checkout session: %v", errMalformedPayload, err)
		}
		if session.Mode != stripe.CheckoutSessionModeSubscription {
			h.logger.Debug("Ignoring non-subscription checkout", zap.String("session_id", session.ID))
			return nil
		}
		return h.webhookService.HandleCheckoutCompleted(ctx, entity.ProviderStripe, checkoutFromSession(&session))

	default:
		h.logger.Warn("Unhandled Stripe event type", zap.String("type", string(event.Type)))
		return nil
	}
}

func paymentFromInvoice(invoice *stripe.Invoice, amount int64) *usecase.PaymentInfo {
	payment := &usecase.PaymentInfo{
		InvoiceID: invoice.ID,
		Amount:    minorUnits(amount, string(invoice.Currency)),
		Currency:  string(invoice.Currency),
		Reason:    string(invoice.BillingReason),
		UserID:    stripeProvider.UserIDFromMetadata(invoice.Metadata),
	}
	if invoice.Customer != nil {
		payment.CustomerID = invoice.Customer.ID
	}
	if invoice.Subscription != nil {
		payment.SubscriptionID = invoice.Subscription.ID
	}
	if payment.UserID == "" && invoice.SubscriptionDetails != nil {
		payment.UserID = stripeProvider.UserIDFromMetadata(invoice.SubscriptionDetails.Metadata)
	}
	return payment
}

func checkoutFromSession(session *stripe.CheckoutSession) *usecase.CheckoutInfo {
	checkout := &usecase.CheckoutInfo{
		UserID:    session.ClientReferenceID,
		SessionID: session.ID,
	}
	if checkout.UserID == "" {
		checkout.UserID = stripeProvider.UserIDFromMetadata(session.Metadata)
	}
	if session.Customer != nil {
		checkout.CustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		checkout.SubscriptionID = session.Subscription.ID
	}
	return checkout
}
