// Package service contains the business logic layer.
//
// This file implements customer reviews. Submitting a review is the only
// path that changes a professional's rating and review count.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// ReviewService defines operations on customer reviews.
type ReviewService interface {
	// SubmitReview records a review and refreshes the professional's
	// aggregate rating in the same transaction.
	SubmitReview(ctx context.Context, params domain.ReviewParams) (*domain.ReviewEvent, error)

	// Verify marks a review as verified by an admin.
	Verify(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewEvent, error)

	// ListByProfessional returns the newest reviews first.
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit int) ([]domain.ReviewEvent, error)
}

type reviewService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store repository.Store, logger *slog.Logger) ReviewService {
	return &reviewService{
		store:  store,
		logger: logger,
	}
}

func (s *reviewService) SubmitReview(ctx context.Context, params domain.ReviewParams) (*domain.ReviewEvent, error) {
	const op = "review.submit"

	params.CustomerName = strings.TrimSpace(params.CustomerName)
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	var review domain.ReviewEvent
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := lockProfessionalRow(ctx, q, op, params.ProfessionalID); err != nil {
			return err
		}

		row, err := q.CreateReviewEvent(ctx, repository.CreateReviewEventParams{
			ProfessionalID: params.ProfessionalID,
			CustomerName:   params.CustomerName,
			Rating:         int16(params.Rating),
			Comment:        params.Comment,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record review")
		}

		if err := q.RefreshProfessionalRating(ctx, params.ProfessionalID); err != nil {
			return domain.Internal(err, op, "failed to refresh rating")
		}

		review = reviewFromRow(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsSubmitted.Inc()
	s.logger.Info("review submitted",
		"professional_id", params.ProfessionalID,
		"review_id", review.ID,
		"rating", review.Rating,
	)
	return &review, nil
}

func (s *reviewService) Verify(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewEvent, error) {
	const op = "review.verify"

	row, err := s.store.SetReviewVerified(ctx, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "review", reviewID.String())
		}
		return nil, domain.Internal(err, op, "failed to verify review")
	}

	review := reviewFromRow(row)
	return &review, nil
}

func (s *reviewService) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit int) ([]domain.ReviewEvent, error) {
	const op = "review.list_by_professional"

	if limit <= 0 || limit > domain.MaxPerPage {
		limit = domain.DefaultPerPage
	}

	rows, err := s.store.ListReviewEventsByProfessional(ctx, repository.ListReviewEventsByProfessionalParams{
		ProfessionalID: professionalID,
		Limit:          int32(limit),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list reviews")
	}

	reviews := make([]domain.ReviewEvent, len(rows))
	for i, row := range rows {
		reviews[i] = reviewFromRow(row)
	}
	return reviews, nil
}
