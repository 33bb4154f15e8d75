// Package service contains the business logic layer.
//
// This file implements the plan catalog. Reads go through an optional cache.
// The only write is provisioning provider price ids at startup.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/DukeRupert/vitrine/internal/cache"
	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// PlanService defines read operations on the plan catalog.
type PlanService interface {
	// List returns every plan ordered by monthly price.
	List(ctx context.Context) ([]domain.Plan, error)

	// Get returns a plan by ID.
	// Returns domain.ENOTFOUND if the plan does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// GetByPriceID returns the plan billed with a payment provider price.
	// Returns domain.ENOTFOUND if no plan uses the price.
	GetByPriceID(ctx context.Context, priceID string) (*domain.Plan, error)

	// SetPriceIDs binds provider price ids to plans by slug. Empty ids are
	// skipped. Returns domain.ENOTFOUND for an unknown slug and
	// domain.ECONFLICT when a price is already bound to another plan.
	SetPriceIDs(ctx context.Context, pricesBySlug map[string]string) error
}

// PlanCache is the subset of cache.Cache the catalog needs.
// Get must return cache.ErrMiss for absent keys.
type PlanCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// =============================================================================
// Implementation
// =============================================================================

type planService struct {
	queries repository.Querier
	cache   PlanCache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewPlanService creates a new PlanService. cache may be nil to disable
// caching.
func NewPlanService(queries repository.Querier, cache PlanCache, ttl time.Duration, logger *slog.Logger) PlanService {
	return &planService{
		queries: queries,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *planService) List(ctx context.Context) ([]domain.Plan, error) {
	const op = "plan.list"

	var plans []domain.Plan
	if s.fromCache(ctx, "plans:all", &plans) {
		return plans, nil
	}

	rows, err := s.queries.ListPlans(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list plans")
	}

	plans = make([]domain.Plan, len(rows))
	for i, row := range rows {
		plans[i] = planFromRow(row)
	}

	s.toCache(ctx, "plans:all", plans)
	return plans, nil
}

func (s *planService) Get(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	const op = "plan.get"

	key := "plans:id:" + id.String()
	var plan domain.Plan
	if s.fromCache(ctx, key, &plan) {
		return &plan, nil
	}

	row, err := s.queries.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "plan", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get plan")
	}

	plan = planFromRow(row)
	s.toCache(ctx, key, plan)
	return &plan, nil
}

func (s *planService) GetByPriceID(ctx context.Context, priceID string) (*domain.Plan, error) {
	const op = "plan.get_by_price_id"

	if priceID == "" {
		return nil, domain.Invalid(op, "price id is required")
	}

	key := "plans:price:" + priceID
	var plan domain.Plan
	if s.fromCache(ctx, key, &plan) {
		return &plan, nil
	}

	row, err := s.queries.GetPlanByStripePriceID(ctx, priceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "plan", priceID)
		}
		return nil, domain.Internal(err, op, "failed to get plan by price")
	}

	plan = planFromRow(row)
	s.toCache(ctx, key, plan)
	return &plan, nil
}

func (s *planService) SetPriceIDs(ctx context.Context, pricesBySlug map[string]string) error {
	const op = "plan.set_price_ids"

	slugs := make([]string, 0, len(pricesBySlug))
	for slug, priceID := range pricesBySlug {
		if priceID != "" {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)

	stale := []string{"plans:all"}
	for _, slug := range slugs {
		priceID := pricesBySlug[slug]
		row, err := s.queries.SetPlanStripePriceID(ctx, repository.SetPlanStripePriceIDParams{
			Slug:          slug,
			StripePriceID: priceID,
		})
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return domain.NotFound(op, "plan", slug)
			case repository.IsUniqueViolation(err):
				return domain.Conflict(op, fmt.Sprintf("price %s is already bound to another plan", priceID))
			}
			return domain.Internal(err, op, "failed to set plan price")
		}
		stale = append(stale, "plans:id:"+row.ID.String(), "plans:price:"+priceID)
		s.logger.Info("plan price bound", "plan_slug", slug, "price_id", priceID)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, stale...); err != nil {
			s.logger.Warn("plan cache invalidation failed", "error", err)
		}
	}
	return nil
}

// fromCache reports whether dest was filled from the cache. Cache failures
// are logged and treated as misses.
func (s *planService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		metrics.PlanCacheLookup("hit")
		return true
	case errors.Is(err, cache.ErrMiss):
		metrics.PlanCacheLookup("miss")
	default:
		metrics.PlanCacheLookup("error")
		s.logger.Warn("plan cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *planService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("plan cache write failed", "key", key, "error", err)
	}
}
