package models

import "time"

// StripeEvent records a webhook event that was fully processed, so a
// redelivery can be acknowledged without dispatching it again.
type StripeEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
}
