package testhelpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

// SignStripePayload constructs the "Stripe-Signature" header value for
// payload, signed at the given time with secret.
func SignStripePayload(secret string, payload []byte, at time.Time) string {
	timestamp := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.", timestamp)))
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// MockStripeEvent creates the JSON body of a Stripe webhook event. The
// api_version matches the linked stripe-go so webhook.ConstructEvent
// accepts it. An empty eventID gets a random one.
func MockStripeEvent(t *testing.T, eventID, eventType string, object map[string]any) []byte {
	t.Helper()

	if eventID == "" {
		eventID = "evt_test_" + utils.RandomString(10)
	}
	payload := map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data": map[string]any{
			"object": object,
		},
	}

	jsonBytes, err := json.Marshal(payload)
	require.NoError(t, err, "Failed to marshal mock Stripe webhook payload")
	return jsonBytes
}

// CheckoutSessionObject is the data.object of a checkout.session.* event.
// Zero-valued courseID/userID are left out of the metadata.
func CheckoutSessionObject(sessionID, userID, courseID string, amountTotal int64) map[string]any {
	metadata := map[string]any{}
	if userID != "" {
		metadata["userId"] = userID
	}
	if courseID != "" {
		metadata["courseId"] = courseID
	}
	return map[string]any{
		"id":           sessionID,
		"object":       "checkout.session",
		"amount_total": amountTotal,
		"currency":     "usd",
		"mode":         "payment",
		"metadata":     metadata,
	}
}

// PostStripeWebhook signs and posts a mock Stripe event to the webhook
// endpoint of a running service and returns the response.
func (h *TestHelper) PostStripeWebhook(webhookURL string, payload []byte) *http.Response {
	require.NotEmpty(h.T, h.StripeWebhookSecret, "StripeWebhookSecret is not configured in TestHelper")
	req, err := http.NewRequest(http.MethodPost, webhookURL, strings.NewReader(string(payload)))
	require.NoError(h.T, err, "failed to create webhook POST request")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", SignStripePayload(h.StripeWebhookSecret, payload, time.Now()))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.T, err, "failed to POST webhook payload")
	return resp
}
