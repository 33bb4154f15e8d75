// Package service contains the business logic layer.
//
// This file implements the category ranking engine. Rankings are computed
// on every call from the current ratings; positions are never stored.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// RankingService defines read operations on category rankings.
type RankingService interface {
	// RankCategory returns one page of the category's ranking. Only active
	// professionals are ranked.
	RankCategory(ctx context.Context, categoryID uuid.UUID, page domain.Page) (*domain.RankingPage, error)

	// RankCategoryBySlug is RankCategory addressed by the category slug.
	RankCategoryBySlug(ctx context.Context, slug string, page domain.Page) (*domain.RankingPage, error)

	// PositionOf returns the professional's position in its category and the
	// category name. The position is 0 when the professional is not ranked.
	PositionOf(ctx context.Context, professionalID uuid.UUID) (int, string, error)
}

type rankingService struct {
	queries repository.Querier
	logger  *slog.Logger
	now     func() time.Time
}

// NewRankingService creates a new RankingService.
func NewRankingService(queries repository.Querier, logger *slog.Logger) RankingService {
	return &rankingService{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *rankingService) RankCategory(ctx context.Context, categoryID uuid.UUID, page domain.Page) (*domain.RankingPage, error) {
	const op = "ranking.rank_category"

	if _, err := s.queries.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "category", categoryID.String())
		}
		return nil, domain.Internal(err, op, "failed to get category")
	}

	ranked, err := s.rank(ctx, op, categoryID)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	return &domain.RankingPage{
		CategoryID: categoryID,
		Items:      domain.Paginate(ranked, page),
		Page:       page,
		Total:      len(ranked),
	}, nil
}

func (s *rankingService) RankCategoryBySlug(ctx context.Context, slug string, page domain.Page) (*domain.RankingPage, error) {
	const op = "ranking.rank_category_by_slug"

	category, err := s.queries.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "category", slug)
		}
		return nil, domain.Internal(err, op, "failed to get category")
	}

	return s.RankCategory(ctx, category.ID, page)
}

func (s *rankingService) PositionOf(ctx context.Context, professionalID uuid.UUID) (int, string, error) {
	const op = "ranking.position_of"

	pro, err := s.queries.GetProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", domain.NotFound(op, "professional", professionalID.String())
		}
		return 0, "", domain.Internal(err, op, "failed to get professional")
	}

	category, err := s.queries.GetCategory(ctx, pro.CategoryID)
	if err != nil {
		return 0, "", domain.Internal(err, op, "failed to get category")
	}

	ranked, err := s.rank(ctx, op, pro.CategoryID)
	if err != nil {
		return 0, "", err
	}
	return domain.PositionIn(ranked, professionalID), category.Name, nil
}

// rank loads the category's candidates and orders them as of now.
func (s *rankingService) rank(ctx context.Context, op string, categoryID uuid.UUID) ([]domain.RankedProfessional, error) {
	rows, err := s.queries.ListRankingCandidates(ctx, categoryID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list ranking candidates")
	}
	return domain.Rank(rankingCandidatesFromRows(rows), s.now()), nil
}
