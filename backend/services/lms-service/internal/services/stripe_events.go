package services

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

// WebhookEvent is the closed set of Stripe events this service understands.
// Anything else parses into UnknownEvent.
type WebhookEvent interface {
	EventID() string
	EventType() string
	isWebhookEvent()
}

type webhookEventBase struct {
	ID   string
	Type string
}

func (e webhookEventBase) EventID() string   { return e.ID }
func (e webhookEventBase) EventType() string { return e.Type }
func (webhookEventBase) isWebhookEvent()     {}

type CheckoutSessionCompletedEvent struct {
	webhookEventBase
	Session *stripe.CheckoutSession
}

type CheckoutSessionExpiredEvent struct {
	webhookEventBase
	Session *stripe.CheckoutSession
}

type ChargeRefundedEvent struct {
	webhookEventBase
	Charge *stripe.Charge
}

type UnknownEvent struct {
	webhookEventBase
}

// ParseWebhookEvent decodes event.Data.Raw into the variant for event.Type.
// A payload that does not match its declared type wraps ErrMalformedEvent.
func ParseWebhookEvent(event stripe.Event) (WebhookEvent, error) {
	base := webhookEventBase{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionExpired:
		var sess stripe.CheckoutSession
		if err := unmarshalEventData(event, &sess); err != nil {
			return nil, err
		}
		if event.Type == stripe.EventTypeCheckoutSessionExpired {
			return CheckoutSessionExpiredEvent{webhookEventBase: base, Session: &sess}, nil
		}
		return CheckoutSessionCompletedEvent{webhookEventBase: base, Session: &sess}, nil

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := unmarshalEventData(event, &charge); err != nil {
			return nil, err
		}
		return ChargeRefundedEvent{webhookEventBase: base, Charge: &charge}, nil

	default:
		return UnknownEvent{webhookEventBase: base}, nil
	}
}

func unmarshalEventData(event stripe.Event, v any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%w: %s has no data object", ErrMalformedEvent, event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, event.Type, err)
	}
	return nil
}
