package polar

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedHeader(v *WebhookVerifier, id string, ts time.Time, body []byte) http.Header {
	h := http.Header{}
	h.Set(HeaderWebhookID, id)
	h.Set(HeaderWebhookTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderWebhookSignature, v.Sign(id, ts, body))
	return h
}

func TestWebhookVerifier(t *testing.T) {
	body := []byte(`{"type":"subscription.updated","data":{}}`)
	v := NewWebhookVerifier("polar_whs_secret")
	require.NotNil(t, v)
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Verify(signedHeader(v, "msg_1", now, body), body))
	})

	t.Run("one of several signatures", func(t *testing.T) {
		h := signedHeader(v, "msg_1", now, body)
		h.Set(HeaderWebhookSignature, "v1,Zm9v "+h.Get(HeaderWebhookSignature))
		assert.NoError(t, v.Verify(h, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signedHeader(v, "msg_1", now, body)
		err := v.Verify(h, []byte(`{"type":"other"}`))
		assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
		assert.ErrorIs(t, err, standardwebhooks.ErrNoMatchingSignature)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewWebhookVerifier("another")
		h := signedHeader(other, "msg_1", now, body)
		assert.ErrorIs(t, v.Verify(h, body), domainErrors.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signedHeader(v, "msg_1", now.Add(-6*time.Minute), body)
		err := v.Verify(h, body)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
		assert.ErrorIs(t, err, standardwebhooks.ErrMessageTooOld)
	})

	t.Run("missing headers", func(t *testing.T) {
		err := v.Verify(http.Header{}, body)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
		assert.ErrorIs(t, err, standardwebhooks.ErrRequiredHeaders)
	})
}

func TestWebhookVerifier_Unconfigured(t *testing.T) {
	v := NewWebhookVerifier("")
	require.Nil(t, v)
	assert.ErrorIs(t, v.Verify(http.Header{}, nil), domainErrors.ErrWebhookSecretMissing)
}

func TestWebhookVerifier_SecretEncoding(t *testing.T) {
	body := []byte(`{"type":"order.paid","data":{}}`)
	now := time.Now()
	raw, err := standardwebhooks.NewWebhookRaw([]byte("secret"))
	require.NoError(t, err)
	sig, err := raw.Sign("msg_1", now, body)
	require.NoError(t, err)

	h := http.Header{}
	h.Set(HeaderWebhookID, "msg_1")
	h.Set(HeaderWebhookTimestamp, strconv.FormatInt(now.Unix(), 10))
	h.Set(HeaderWebhookSignature, sig)

	// "c2VjcmV0" is base64 for "secret"
	assert.NoError(t, NewWebhookVerifier("whsec_c2VjcmV0").Verify(h, body))
	assert.NoError(t, NewWebhookVerifier("secret").Verify(h, body))
	assert.Error(t, NewWebhookVerifier("c2VjcmV0").Verify(h, body))
	// a whsec_ value that is not base64 is used verbatim
	assert.NotNil(t, NewWebhookVerifier("whsec_not base64!"))
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"order.paid","data":{"id":"ord_1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "order.paid", event.Type)

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
}
