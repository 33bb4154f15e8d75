// This file implements the Stripe webhook handler that drives the
// subscription lifecycle.
//
// Route:
//   - POST /webhooks/stripe -> HandleStripeWebhook
//
// This route is PUBLIC (no auth middleware) because Stripe calls it directly.
// Authentication is via the Stripe webhook signature verification.
//
// Status codes tell Stripe whether to redeliver: 2xx for every event the
// engine has settled (applied, duplicate, stale, unmatched, ignored or
// unprocessable), 5xx only when the store failed and a retry can succeed.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/billing"
	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
)

// maxWebhookBody limits the webhook payload.
const maxWebhookBody = 65536

// WebhookHandler handles incoming webhook events from Stripe.
type WebhookHandler struct {
	billing       billing.Service
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
// billingService may be nil when Stripe is not configured.
func NewWebhookHandler(billingService billing.Service, subscriptions service.SubscriptionService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing:       billingService,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers webhook routes on the provided mux.
// These routes are public. Stripe requests are authenticated by signature.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies, translates and applies a Stripe event.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.logger.Warn("stripe webhook received but billing is not configured")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	event, err := h.billing.VerifyWebhookSignature(body, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	logger := h.logger.With("event_id", event.ID, "type", event.Type)
	logger.Info("stripe webhook received")

	paymentEvent, handled, err := billing.TranslateEvent(event)
	if !handled {
		logger.Debug("unhandled webhook event type")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		// Redelivery cannot fix a payload we cannot read.
		logger.Error("failed to translate webhook event", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	result, err := h.subscriptions.ApplyPaymentEvent(r.Context(), paymentEvent)
	if err != nil {
		if domain.ErrorCode(err) == domain.EINTERNAL {
			logger.Error("failed to apply payment event", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		logger.Error("payment event rejected", "error", err, "code", domain.ErrorCode(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	logger.Info("payment event processed", "result", result)
	w.WriteHeader(http.StatusOK)
}
