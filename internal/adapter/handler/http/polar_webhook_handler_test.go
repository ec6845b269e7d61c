package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const polarSecret = "polar_whs_test"

func postPolar(h *PolarWebhookHandler, payload []byte, header http.Header) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/polar/webhook", bytes.NewReader(payload))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	_ = h.HandleWebhook(e.NewContext(req, rec))
	return rec
}

func signPolar(payload []byte) http.Header {
	now := time.Now()
	h := http.Header{}
	h.Set(polar.HeaderWebhookID, "msg_1")
	h.Set(polar.HeaderWebhookTimestamp, strconv.FormatInt(now.Unix(), 10))
	h.Set(polar.HeaderWebhookSignature, polar.NewWebhookVerifier(polarSecret).Sign("msg_1", now, payload))
	return h
}

func newPolarHandler(svc WebhookService) *PolarWebhookHandler {
	return NewPolarWebhookHandler(zap.NewNop(), polar.NewWebhookVerifier(polarSecret), svc)
}

func TestPolarWebhook_SubscriptionEvents(t *testing.T) {
	tests := []struct {
		eventType string
		expected  entity.EventType
	}{
		{"subscription.created", entity.EventSubscriptionCreated},
		{"subscription.updated", entity.EventSubscriptionUpdated},
		{"subscription.active", entity.EventSubscriptionUpdated},
		{"subscription.uncanceled", entity.EventSubscriptionUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			svc := new(MockWebhookService)
			svc.On("HandleSubscriptionChanged", mock.Anything, mock.MatchedBy(func(sub *entity.ProviderSubscription) bool {
				return sub.ID == "sub_1" && sub.ProductID == "prod_yearly" && sub.UserID == testUserID
			}), tt.expected).Return(nil)

			payload := []byte(`{"type":"` + tt.eventType + `","data":{"id":"sub_1","status":"active",
				"customer_id":"cus_1","product_id":"prod_yearly",
				"customer":{"id":"cus_1","external_id":"` + testUserID + `"}}}`)
			rec := postPolar(newPolarHandler(svc), payload, signPolar(payload))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"received":true}`, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestPolarWebhook_CancelAndRevoke(t *testing.T) {
	svc := new(MockWebhookService)
	svc.On("HandleSubscriptionCanceled", mock.Anything, mock.Anything, false).Return(nil).Once()
	svc.On("HandleSubscriptionCanceled", mock.Anything, mock.Anything, true).Return(nil).Once()
	h := newPolarHandler(svc)

	canceled := []byte(`{"type":"subscription.canceled","data":{"id":"sub_1","status":"active","cancel_at_period_end":true}}`)
	assert.Equal(t, http.StatusOK, postPolar(h, canceled, signPolar(canceled)).Code)

	revoked := []byte(`{"type":"subscription.revoked","data":{"id":"sub_1","status":"canceled"}}`)
	assert.Equal(t, http.StatusOK, postPolar(h, revoked, signPolar(revoked)).Code)

	svc.AssertExpectations(t)
}

func TestPolarWebhook_CustomerStateChanged(t *testing.T) {
	svc := new(MockWebhookService)
	svc.On("HandleCustomerStateChanged", mock.Anything, entity.ProviderPolar, mock.MatchedBy(func(s *usecase.CustomerState) bool {
		return s.UserID == testUserID && s.CustomerID == "cus_1" && len(s.Subscriptions) == 1 &&
			s.Subscriptions[0].CustomerID == "cus_1"
	})).Return(nil)

	payload := []byte(`{"type":"customer.state_changed","data":{"id":"cus_1","external_id":"` + testUserID + `",
		"active_subscriptions":[{"id":"sub_1","status":"active","product_id":"prod_monthly"}]}}`)
	rec := postPolar(newPolarHandler(svc), payload, signPolar(payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestPolarWebhook_OrderPaid(t *testing.T) {
	svc := new(MockWebhookService)
	svc.On("HandlePaymentSucceeded", mock.Anything, entity.ProviderPolar, mock.MatchedBy(func(p *usecase.PaymentInfo) bool {
		return p.SubscriptionID == "sub_1" && p.InvoiceID == "ord_1" && p.Amount.StringFixed(2) == "99.00"
	})).Return(nil).Once()
	h := newPolarHandler(svc)

	paid := []byte(`{"type":"order.paid","data":{"id":"ord_1","customer_id":"cus_1","subscription_id":"sub_1",
		"total_amount":9900,"currency":"usd","billing_reason":"subscription_cycle"}}`)
	assert.Equal(t, http.StatusOK, postPolar(h, paid, signPolar(paid)).Code)

	oneTime := []byte(`{"type":"order.paid","data":{"id":"ord_2","customer_id":"cus_1","total_amount":500}}`)
	assert.Equal(t, http.StatusOK, postPolar(h, oneTime, signPolar(oneTime)).Code)

	svc.AssertExpectations(t)
}

func TestPolarWebhook_SignatureFailures(t *testing.T) {
	payload := []byte(`{"type":"subscription.updated","data":{"id":"sub_1","status":"active"}}`)

	t.Run("secret not configured", func(t *testing.T) {
		svc := new(MockWebhookService)
		rec := postPolar(NewPolarWebhookHandler(zap.NewNop(), nil, svc), payload, signPolar(payload))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.Calls)
	})

	t.Run("missing headers", func(t *testing.T) {
		svc := new(MockWebhookService)
		rec := postPolar(newPolarHandler(svc), payload, http.Header{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, svc.Calls)
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := new(MockWebhookService)
		h := NewPolarWebhookHandler(zap.NewNop(), polar.NewWebhookVerifier("other"), svc)
		rec := postPolar(h, payload, signPolar(payload))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, svc.Calls)
	})
}

func TestPolarWebhook_MalformedData(t *testing.T) {
	svc := new(MockWebhookService)
	payload := []byte(`{"type":"subscription.updated","data":{"status":"active"}}`)

	rec := postPolar(newPolarHandler(svc), payload, signPolar(payload))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.Calls)
}

func TestPolarWebhook_ProcessingFailureIsRetried(t *testing.T) {
	svc := new(MockWebhookService)
	svc.On("HandleSubscriptionCanceled", mock.Anything, mock.Anything, true).Return(assert.AnError)

	payload := []byte(`{"type":"subscription.revoked","data":{"id":"sub_1","status":"canceled"}}`)
	rec := postPolar(newPolarHandler(svc), payload, signPolar(payload))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
