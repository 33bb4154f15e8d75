// Package service contains the business logic layer.
//
// This file implements the subscription state tracker. Payment webhooks,
// admin deactivation and the expiry sweep are the only writers of a
// professional's subscription columns.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/vitrine/internal/billing"
	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SubscriptionService defines the subscription lifecycle operations.
type SubscriptionService interface {
	// ApplyPaymentEvent dispatches a translated webhook to the matching
	// transition. Duplicate, stale and unmatched events are reported through
	// the result, not as errors.
	ApplyPaymentEvent(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error)

	// OnPaymentConfirmed activates the professional until the event's
	// period end on the event's plan.
	OnPaymentConfirmed(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error)

	// OnPaymentFailedOrExpired moves an active professional to inactive.
	// The expiry date is kept.
	OnPaymentFailedOrExpired(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error)

	// RequestCheckout starts a hosted checkout for planID and returns its URL.
	// Returns domain.ENOTIMPL when billing is not configured.
	RequestCheckout(ctx context.Context, professionalID, planID uuid.UUID) (string, error)

	// Deactivate marks a professional inactive by admin decision.
	Deactivate(ctx context.Context, professionalID uuid.UUID) error

	// ExpireLapsed stores inactive on every active row past its expiry and
	// returns how many changed. Reads never depend on it having run.
	ExpireLapsed(ctx context.Context) (int64, error)

	// History returns applied transitions, newest first.
	History(ctx context.Context, professionalID uuid.UUID) ([]domain.SubscriptionHistoryEntry, error)
}

// =============================================================================
// Implementation
// =============================================================================

type subscriptionService struct {
	store   repository.Store
	plans   PlanService
	billing billing.Service
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
//
// Parameters:
// - store: Repository store for database access and transactions
// - plans: Plan catalog for resolving event plans
// - billingSvc: Payment gateway for checkout (nil disables checkout)
// - baseURL: Public base URL for checkout return links
// - logger: Structured logger for operation logging
func NewSubscriptionService(
	store repository.Store,
	plans PlanService,
	billingSvc billing.Service,
	baseURL string,
	logger *slog.Logger,
) SubscriptionService {
	return &subscriptionService{
		store:   store,
		plans:   plans,
		billing: billingSvc,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// =============================================================================
// Payment events
// =============================================================================

func (s *subscriptionService) ApplyPaymentEvent(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error) {
	const op = "subscription.apply_payment_event"

	if err := event.Validate(op); err != nil {
		return "", err
	}

	switch event.Type {
	case domain.PaymentEventConfirmed:
		return s.OnPaymentConfirmed(ctx, event)
	default:
		return s.OnPaymentFailedOrExpired(ctx, event)
	}
}

func (s *subscriptionService) OnPaymentConfirmed(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error) {
	const op = "subscription.on_payment_confirmed"

	if err := event.Validate(op); err != nil {
		return "", err
	}
	if event.Type != domain.PaymentEventConfirmed {
		return "", domain.Invalid(op, fmt.Sprintf("expected a confirmed event, got %s", event.Type))
	}

	plan, err := s.resolvePlan(ctx, event)
	if err != nil {
		return "", err
	}

	return s.apply(ctx, op, event, plan)
}

func (s *subscriptionService) OnPaymentFailedOrExpired(ctx context.Context, event domain.PaymentEvent) (domain.ApplyResult, error) {
	const op = "subscription.on_payment_failed"

	if err := event.Validate(op); err != nil {
		return "", err
	}
	if event.Type != domain.PaymentEventFailed && event.Type != domain.PaymentEventCanceled {
		return "", domain.Invalid(op, fmt.Sprintf("expected a failed or canceled event, got %s", event.Type))
	}

	return s.apply(ctx, op, event, nil)
}

// resolvePlan finds the plan a confirmed event pays for. A nil plan with a
// nil error means the event names a plan this catalog does not know.
func (s *subscriptionService) resolvePlan(ctx context.Context, event domain.PaymentEvent) (*domain.Plan, error) {
	var (
		plan *domain.Plan
		err  error
	)
	if event.PlanID != nil {
		plan, err = s.plans.Get(ctx, *event.PlanID)
	} else {
		plan, err = s.plans.GetByPriceID(ctx, event.PriceID)
	}
	if domain.ErrorCode(err) == domain.ENOTFOUND {
		return nil, nil
	}
	return plan, err
}

// apply records the event and runs the transition in one transaction:
// idempotency insert, row lock, staleness check, update, history row.
func (s *subscriptionService) apply(ctx context.Context, op string, event domain.PaymentEvent, plan *domain.Plan) (domain.ApplyResult, error) {
	var (
		result         domain.ApplyResult
		professionalID uuid.UUID
	)

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		inserted, err := q.InsertPaymentEvent(ctx, repository.InsertPaymentEventParams{
			TransactionID: event.TransactionID,
			EventType:     string(event.Type),
			Payload:       nullRawMessage(event.Payload),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record payment event")
		}
		if inserted == 0 {
			result = domain.ApplyResultDuplicate
			return nil
		}

		pro, err := s.lockProfessional(ctx, q, event)
		if err != nil {
			return domain.Internal(err, op, "failed to load professional")
		}
		if pro == nil || (event.Type == domain.PaymentEventConfirmed && plan == nil) {
			result = domain.ApplyResultUnmatched
			return s.setOutcome(ctx, q, op, event.TransactionID, result, nil)
		}
		professionalID = pro.ID

		if isStale(pro, event, plan) {
			result = domain.ApplyResultStale
			return s.setOutcome(ctx, q, op, event.TransactionID, result, &pro.ID)
		}

		update, source := transition(pro, event, plan)
		if err := q.UpdateProfessionalSubscription(ctx, update); err != nil {
			return domain.Internal(err, op, "failed to update subscription")
		}
		if update.Status != string(pro.Status) || event.Type == domain.PaymentEventConfirmed {
			if err := q.InsertSubscriptionHistory(ctx, repository.InsertSubscriptionHistoryParams{
				ProfessionalID: pro.ID,
				FromStatus:     string(pro.Status),
				ToStatus:       update.Status,
				PlanID:         update.PlanID,
				ExpiresAt:      update.SubscriptionExpiresAt,
				Source:         source,
			}); err != nil {
				return domain.Internal(err, op, "failed to record subscription history")
			}
		}

		result = domain.ApplyResultApplied
		return s.setOutcome(ctx, q, op, event.TransactionID, result, &pro.ID)
	})
	if err != nil {
		return "", err
	}

	metrics.PaymentEventRecorded(string(event.Type), string(result))
	s.logResult(event, result, professionalID)
	return result, nil
}

// lockProfessional loads the event's professional FOR UPDATE. It returns
// nil when the event matches no professional.
func (s *subscriptionService) lockProfessional(ctx context.Context, q repository.Querier, event domain.PaymentEvent) (*domain.Professional, error) {
	id := uuid.Nil
	if event.ProfessionalID != nil {
		id = *event.ProfessionalID
	} else {
		row, err := q.GetProfessionalByCustomerRef(ctx, event.ExternalCustomerRef)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, err
		}
		id = row.ID
	}

	row, err := q.GetProfessionalForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return professionalFromRow(row), nil
}

func (s *subscriptionService) setOutcome(ctx context.Context, q repository.Querier, op, transactionID string, result domain.ApplyResult, professionalID *uuid.UUID) error {
	if err := q.SetPaymentEventOutcome(ctx, repository.SetPaymentEventOutcomeParams{
		TransactionID:  transactionID,
		Outcome:        string(result),
		ProfessionalID: nullUUID(professionalID),
	}); err != nil {
		return domain.Internal(err, op, "failed to record payment event outcome")
	}
	return nil
}

func (s *subscriptionService) logResult(event domain.PaymentEvent, result domain.ApplyResult, professionalID uuid.UUID) {
	attrs := []any{
		"transaction_id", event.TransactionID,
		"type", event.Type,
		"result", result,
		"occurred_at", event.OccurredAt,
	}
	if professionalID != uuid.Nil {
		attrs = append(attrs, "professional_id", professionalID)
	}

	switch result {
	case domain.ApplyResultApplied:
		s.logger.Info("payment event applied", attrs...)
	case domain.ApplyResultDuplicate:
		s.logger.Info("duplicate payment event ignored", attrs...)
	default:
		s.logger.Warn("payment event discarded", attrs...)
	}
}

// isStale reports whether an event must not change the stored state.
// Events older than the last authoritative event are stale. So is a
// confirmation that would shorten the current period on the same plan.
func isStale(pro *domain.Professional, event domain.PaymentEvent, plan *domain.Plan) bool {
	if pro.SubscriptionEventAt != nil && event.OccurredAt.Before(*pro.SubscriptionEventAt) {
		return true
	}
	if event.Type == domain.PaymentEventConfirmed &&
		pro.Status == domain.StatusActive &&
		plan != nil && pro.PlanID == plan.ID &&
		pro.SubscriptionExpiresAt != nil &&
		event.PeriodEnd.Before(*pro.SubscriptionExpiresAt) {
		return true
	}
	return false
}

// transition computes the new subscription columns for a non-stale event.
// A confirmation sets the expiry to the period end rather than adding to it,
// so replays and reorderings never extend a subscription twice.
func transition(pro *domain.Professional, event domain.PaymentEvent, plan *domain.Plan) (repository.UpdateProfessionalSubscriptionParams, string) {
	occurredAt := event.OccurredAt
	update := repository.UpdateProfessionalSubscriptionParams{
		ID:                    pro.ID,
		PlanID:                pro.PlanID,
		Status:                string(pro.Status),
		StatusReason:          string(pro.StatusReason),
		SubscriptionExpiresAt: nullTime(pro.SubscriptionExpiresAt),
		SubscriptionEventAt:   nullTime(&occurredAt),
	}

	switch event.Type {
	case domain.PaymentEventConfirmed:
		periodEnd := event.PeriodEnd
		update.PlanID = plan.ID
		update.Status = string(domain.StatusActive)
		update.StatusReason = string(domain.StatusReasonNone)
		update.SubscriptionExpiresAt = nullTime(&periodEnd)
	case domain.PaymentEventFailed, domain.PaymentEventCanceled:
		// A professional who never paid stays pending, and an admin
		// deactivation keeps its reason.
		adminDeactivated := pro.Status == domain.StatusInactive && pro.StatusReason == domain.StatusReasonAdmin
		if pro.Status != domain.StatusPending && !adminDeactivated {
			update.Status = string(domain.StatusInactive)
			update.StatusReason = string(domain.StatusReasonPaymentFailed)
			if event.Type == domain.PaymentEventCanceled {
				update.StatusReason = string(domain.StatusReasonCanceled)
			}
		}
	}

	return update, "webhook:" + string(event.Type)
}

// =============================================================================
// Checkout
// =============================================================================

func (s *subscriptionService) RequestCheckout(ctx context.Context, professionalID, planID uuid.UUID) (string, error) {
	const op = "subscription.request_checkout"

	if s.billing == nil {
		return "", domain.Errorf(domain.ENOTIMPL, op, "Billing is not configured")
	}

	row, err := s.store.GetProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFound(op, "professional", professionalID.String())
		}
		return "", domain.Internal(err, op, "failed to get professional")
	}
	pro := professionalFromRow(row)

	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return "", err
	}
	if plan.StripePriceID == "" {
		return "", domain.Invalid(op, fmt.Sprintf("Plan %s cannot be purchased online", plan.Name))
	}

	customerID := pro.PaymentCustomerRef
	if customerID == "" {
		customerID, err = s.billing.CreateCustomer(pro.Email, pro.Name, pro.ID)
		if err != nil {
			return "", domain.Wrap(err, domain.EPAYMENT, op, "Could not start checkout. Please try again.")
		}
		if err := s.store.SetPaymentCustomerRef(ctx, repository.SetPaymentCustomerRefParams{
			ID:                 pro.ID,
			PaymentCustomerRef: customerID,
		}); err != nil {
			return "", domain.Internal(err, op, "failed to save payment customer")
		}
		s.logger.Info("payment customer created", "professional_id", pro.ID, "customer_id", customerID)
	}

	url, err := s.billing.CreateCheckoutSession(billing.CheckoutParams{
		CustomerID:     customerID,
		PriceID:        plan.StripePriceID,
		ProfessionalID: pro.ID,
		PlanID:         plan.ID,
		SuccessURL:     fmt.Sprintf("%s/professionals/%s/checkout/success", s.baseURL, pro.ID),
		CancelURL:      fmt.Sprintf("%s/professionals/%s/checkout/cancel", s.baseURL, pro.ID),
	})
	if err != nil {
		return "", domain.Wrap(err, domain.EPAYMENT, op, "Could not start checkout. Please try again.")
	}

	metrics.CheckoutSessions.WithLabelValues(plan.Slug).Inc()
	s.logger.Info("checkout session created", "professional_id", pro.ID, "plan", plan.Slug)
	return url, nil
}

// =============================================================================
// Admin and hygiene
// =============================================================================

func (s *subscriptionService) Deactivate(ctx context.Context, professionalID uuid.UUID) error {
	const op = "subscription.deactivate"

	now := s.now()
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		row, err := q.GetProfessionalForUpdate(ctx, professionalID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "professional", professionalID.String())
			}
			return domain.Internal(err, op, "failed to load professional")
		}
		pro := professionalFromRow(row)

		if pro.Status == domain.StatusInactive && pro.StatusReason == domain.StatusReasonAdmin {
			return nil
		}

		if err := q.UpdateProfessionalSubscription(ctx, repository.UpdateProfessionalSubscriptionParams{
			ID:                    pro.ID,
			PlanID:                pro.PlanID,
			Status:                string(domain.StatusInactive),
			StatusReason:          string(domain.StatusReasonAdmin),
			SubscriptionExpiresAt: nullTime(pro.SubscriptionExpiresAt),
			SubscriptionEventAt:   nullTime(&now),
		}); err != nil {
			return domain.Internal(err, op, "failed to deactivate professional")
		}

		if err := q.InsertSubscriptionHistory(ctx, repository.InsertSubscriptionHistoryParams{
			ProfessionalID: pro.ID,
			FromStatus:     string(pro.Status),
			ToStatus:       string(domain.StatusInactive),
			PlanID:         pro.PlanID,
			ExpiresAt:      nullTime(pro.SubscriptionExpiresAt),
			Source:         "admin",
		}); err != nil {
			return domain.Internal(err, op, "failed to record subscription history")
		}

		s.logger.Info("professional deactivated", "professional_id", pro.ID, "from_status", pro.Status)
		return nil
	})
}

func (s *subscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	const op = "subscription.expire_lapsed"

	var expired []repository.Professional
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		rows, err := q.ExpireLapsedSubscriptions(ctx, s.now())
		if err != nil {
			return domain.Internal(err, op, "failed to expire subscriptions")
		}
		for _, row := range rows {
			if err := q.InsertSubscriptionHistory(ctx, repository.InsertSubscriptionHistoryParams{
				ProfessionalID: row.ID,
				FromStatus:     string(domain.StatusActive),
				ToStatus:       row.Status,
				PlanID:         row.PlanID,
				ExpiresAt:      row.SubscriptionExpiresAt,
				Source:         "sweep",
			}); err != nil {
				return domain.Internal(err, op, "failed to record subscription history")
			}
		}
		expired = rows
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(expired) > 0 {
		s.logger.Info("lapsed subscriptions expired", "count", len(expired))
	}
	return int64(len(expired)), nil
}

func (s *subscriptionService) History(ctx context.Context, professionalID uuid.UUID) ([]domain.SubscriptionHistoryEntry, error) {
	const op = "subscription.history"

	rows, err := s.store.ListSubscriptionHistory(ctx, professionalID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscription history")
	}

	entries := make([]domain.SubscriptionHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = historyFromRow(row)
	}
	return entries, nil
}
