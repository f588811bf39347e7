package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

var completedPayload = []byte(`{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_abc",
    "object": "checkout.session",
    "amount_total": 19800,
    "customer_email": "ada@example.com",
    "payment_intent": "pi_123",
    "metadata": {"v": "1", "workshopDateId": "3", "quantity": "2", "firstName": "Ada", "lastName": "Lovelace"}
  }}
}`)

func TestVerifyEvent_ValidSignature(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)

	ev, err := g.VerifyEvent(completedPayload, sign(completedPayload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "pi_123", ev.Session.PaymentReference)
	assert.Equal(t, int64(19800), ev.Session.AmountTotal)
	assert.Equal(t, "2", ev.Session.Metadata["quantity"])
}

func TestVerifyEvent_WrongSecret(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)

	_, err := g.VerifyEvent(completedPayload, sign(completedPayload, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyEvent_StaleTimestamp(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)

	_, err := g.VerifyEvent(completedPayload, sign(completedPayload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyEvent_TamperedBody(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)
	sig := sign(completedPayload, testWebhookSecret, time.Now())

	tampered := append([]byte{}, completedPayload...)
	tampered[len(tampered)-3] = ' '
	_, err := g.VerifyEvent(tampered, sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyEvent_PaymentIntentFallsBackToSessionID(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)
	payload := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_xyz","object":"checkout.session","metadata":{}}}}`)

	ev, err := g.VerifyEvent(payload, sign(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_xyz", ev.Session.PaymentReference)
}
