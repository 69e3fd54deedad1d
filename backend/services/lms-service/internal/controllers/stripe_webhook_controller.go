package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

const maxWebhookBodyBytes = int64(65536)

type StripeWebhookController struct {
	webhookService *services.StripeWebhookService
}

func NewStripeWebhookController(webhookService *services.StripeWebhookService) *StripeWebhookController {
	return &StripeWebhookController{webhookService: webhookService}
}

// WebhookHandler -> POST /api/v1/lms/stripe/webhook
func (c *StripeWebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidSignature, "Missing Stripe-Signature header", nil)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read webhook body", nil, err)
		return
	}

	event, err := c.webhookService.VerifyEvent(payload, sigHeader)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidSignature, "Webhook signature verification failed", nil, err)
		return
	}

	outcome, err := c.webhookService.Process(r.Context(), event)
	if err != nil {
		fields := logrus.Fields{"event_id": event.ID, "event_type": event.Type, "outcome": outcome}
		switch {
		case errors.Is(err, services.ErrMissingMetadata):
			utils.Logger.WithFields(fields).Warn("Rejecting stripe event without usable metadata")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeMissingMetadata, "Checkout session metadata is missing or invalid", nil, err)
		case errors.Is(err, services.ErrMalformedEvent):
			utils.Logger.WithFields(fields).Warn("Rejecting malformed stripe event")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed event payload", nil, err)
		default:
			message := "Failed to process webhook event"
			details := dtos.WebhookFailureDetails{EventID: event.ID, EventType: string(event.Type)}
			var stepErr *services.StepError
			if errors.As(err, &stepErr) {
				message += ": " + stepErr.Step + " failed"
				details.Step = stepErr.Step
			}
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, message, details, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.WebhookReceivedResponse{Received: true})
}
