package dtos

type HealthCheckResponse struct {
	Status string `json:"status"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// WebhookReceivedResponse is what Stripe gets back for every accepted event.
type WebhookReceivedResponse struct {
	Received bool `json:"received"`
}

// WebhookFailureDetails accompanies a 500 so a failed delivery can be traced
// from the Stripe dashboard.
type WebhookFailureDetails struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Step      string `json:"step,omitempty"`
}
