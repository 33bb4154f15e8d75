// Package service contains the business logic layer.
//
// This file implements the quota enforcer. Contact and photo limits come from
// the professional's plan; usage is always counted from the event log, never
// from a stored counter.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService defines operations for checking and enforcing plan limits.
type QuotaService interface {
	// SubmitContact records a customer contact if the professional is active
	// and has contacts left this calendar month.
	// Returns *domain.SubscriptionInactiveError or *domain.QuotaExceededError
	// when blocked; nothing is written in either case.
	SubmitContact(ctx context.Context, params domain.ContactParams) (*domain.ContactResult, error)

	// ContactUsage returns this month's contact usage.
	ContactUsage(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error)

	// CheckPhotoQuota returns the photo usage if another photo may be added.
	// It is advisory; AddPhoto re-checks under the row lock.
	CheckPhotoQuota(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error)

	// PhotoUsage returns the standing portfolio size against the plan.
	PhotoUsage(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error)
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	store  repository.Store
	plans  PlanService
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewQuotaService creates a new QuotaService. loc is the operating timezone
// that decides where a calendar month starts.
func NewQuotaService(store repository.Store, plans PlanService, loc *time.Location, logger *slog.Logger) QuotaService {
	if loc == nil {
		loc = time.UTC
	}
	return &quotaService{
		store:  store,
		plans:  plans,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

func (s *quotaService) SubmitContact(ctx context.Context, params domain.ContactParams) (*domain.ContactResult, error) {
	const op = "quota.submit_contact"

	if err := params.Validate(op); err != nil {
		return nil, err
	}

	now := s.now()
	var result *domain.ContactResult

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		// The row lock serializes submissions for one professional, so the
		// count below cannot go stale before the insert.
		pro, err := lockProfessionalRow(ctx, q, op, params.ProfessionalID)
		if err != nil {
			return err
		}
		if err := pro.RequireActive(op, now); err != nil {
			return err
		}

		plan, err := s.plans.Get(ctx, pro.PlanID)
		if err != nil {
			return err
		}

		used, err := q.CountContactEventsSince(ctx, repository.CountContactEventsSinceParams{
			ProfessionalID: pro.ID,
			Since:          domain.StartOfMonth(now, s.loc),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to count contacts")
		}

		usage := domain.NewQuotaSnapshot(domain.QuotaResourceContacts, used, plan)
		if !usage.Unlimited && usage.LimitReached {
			return domain.QuotaExceeded(op, domain.QuotaResourceContacts, usage)
		}

		row, err := q.CreateContactEvent(ctx, repository.CreateContactEventParams{
			ProfessionalID: pro.ID,
			CustomerName:   params.CustomerName,
			CustomerEmail:  params.CustomerEmail,
			CustomerPhone:  params.CustomerPhone,
			Message:        params.Message,
			ContactMethod:  string(params.ContactMethod),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record contact")
		}

		result = &domain.ContactResult{
			Contact: contactFromRow(row),
			Usage:   domain.NewQuotaSnapshot(domain.QuotaResourceContacts, used+1, plan),
		}
		return nil
	})
	if err != nil {
		s.recordBlocked(err, params.ProfessionalID, metrics.ContactRecorded)
		return nil, err
	}

	metrics.ContactRecorded(metrics.OutcomeAccepted)
	s.logger.Info("contact recorded",
		"professional_id", params.ProfessionalID,
		"contact_id", result.Contact.ID,
		"method", params.ContactMethod,
		"used", result.Usage.Used,
		"approaching_limit", result.Usage.ApproachingLimit,
	)
	return result, nil
}

func (s *quotaService) ContactUsage(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error) {
	const op = "quota.contact_usage"

	pro, plan, err := s.professionalAndPlan(ctx, op, professionalID)
	if err != nil {
		return nil, err
	}

	used, err := s.store.CountContactEventsSince(ctx, repository.CountContactEventsSinceParams{
		ProfessionalID: pro.ID,
		Since:          domain.StartOfMonth(s.now(), s.loc),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count contacts")
	}

	usage := domain.NewQuotaSnapshot(domain.QuotaResourceContacts, used, plan)
	return &usage, nil
}

func (s *quotaService) CheckPhotoQuota(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error) {
	const op = "quota.check_photo_quota"

	pro, plan, err := s.professionalAndPlan(ctx, op, professionalID)
	if err != nil {
		return nil, err
	}
	if err := pro.RequireActive(op, s.now()); err != nil {
		return nil, err
	}

	return checkPhotoQuota(ctx, s.store, op, pro.ID, plan)
}

func (s *quotaService) PhotoUsage(ctx context.Context, professionalID uuid.UUID) (*domain.QuotaSnapshot, error) {
	const op = "quota.photo_usage"

	pro, plan, err := s.professionalAndPlan(ctx, op, professionalID)
	if err != nil {
		return nil, err
	}

	used, err := s.store.CountPortfolioPhotos(ctx, pro.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count photos")
	}

	usage := domain.NewQuotaSnapshot(domain.QuotaResourcePhotos, used, plan)
	return &usage, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *quotaService) professionalAndPlan(ctx context.Context, op string, id uuid.UUID) (*domain.Professional, *domain.Plan, error) {
	row, err := s.store.GetProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.NotFound(op, "professional", id.String())
		}
		return nil, nil, domain.Internal(err, op, "failed to get professional")
	}
	pro := professionalFromRow(row)

	plan, err := s.plans.Get(ctx, pro.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return pro, plan, nil
}

// recordBlocked counts and logs a rejected submission. Other errors are
// left to the caller.
func (s *quotaService) recordBlocked(err error, professionalID uuid.UUID, record func(string)) {
	var (
		quotaErr    *domain.QuotaExceededError
		inactiveErr *domain.SubscriptionInactiveError
	)
	switch {
	case errors.As(err, &quotaErr):
		record(metrics.OutcomeQuotaExceeded)
		s.logger.Info("submission rejected by quota",
			"professional_id", professionalID,
			"resource", quotaErr.Resource,
			"used", quotaErr.Usage.Used,
			"limit", quotaErr.Usage.Limit,
		)
	case errors.As(err, &inactiveErr):
		record(metrics.OutcomeInactive)
		s.logger.Info("submission rejected for inactive subscription",
			"professional_id", professionalID,
			"reason", inactiveErr.Reason,
		)
	}
}

// lockProfessionalRow loads a professional FOR UPDATE inside a transaction.
func lockProfessionalRow(ctx context.Context, q repository.Querier, op string, id uuid.UUID) (*domain.Professional, error) {
	row, err := q.GetProfessionalForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "professional", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load professional")
	}
	return professionalFromRow(row), nil
}

// checkPhotoQuota returns the current photo usage, or a QuotaExceededError
// when the portfolio is full.
func checkPhotoQuota(ctx context.Context, q repository.Querier, op string, professionalID uuid.UUID, plan *domain.Plan) (*domain.QuotaSnapshot, error) {
	used, err := q.CountPortfolioPhotos(ctx, professionalID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count photos")
	}

	usage := domain.NewQuotaSnapshot(domain.QuotaResourcePhotos, used, plan)
	if !usage.Unlimited && usage.LimitReached {
		return nil, domain.QuotaExceeded(op, domain.QuotaResourcePhotos, usage)
	}
	return &usage, nil
}
