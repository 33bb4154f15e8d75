package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview_RefreshesRating(t *testing.T) {
	f := newFixture()
	pro := f.activeProfessional(f.basic, testNow.AddDate(0, 0, 10))
	svc := NewReviewService(f.store, testLogger())
	ctx := context.Background()

	for _, rating := range []int{5, 4, 4} {
		_, err := svc.SubmitReview(ctx, domain.ReviewParams{
			ProfessionalID: pro.ID,
			CustomerName:   "Fernanda",
			Rating:         rating,
			Comment:        "Bom serviço",
		})
		require.NoError(t, err)
	}

	got := getProfessional(t, f, pro.ID)
	assert.Equal(t, 3, got.TotalReviews)
	assert.Equal(t, "4.33", got.Rating.StringFixed(2))

	reviews, err := svc.ListByProfessional(ctx, pro.ID, 2)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestSubmitReview_Validation(t *testing.T) {
	f := newFixture()
	pro := f.activeProfessional(f.basic, testNow.AddDate(0, 0, 10))
	svc := NewReviewService(f.store, testLogger())

	tests := []struct {
		name   string
		params domain.ReviewParams
		field  string
	}{
		{"rating too low", domain.ReviewParams{ProfessionalID: pro.ID, CustomerName: "A", Rating: 0}, "rating"},
		{"rating too high", domain.ReviewParams{ProfessionalID: pro.ID, CustomerName: "A", Rating: 6}, "rating"},
		{"blank name", domain.ReviewParams{ProfessionalID: pro.ID, CustomerName: "   ", Rating: 3}, "customer_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitReview(context.Background(), tt.params)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	assert.Equal(t, 0, getProfessional(t, f, pro.ID).TotalReviews)
}

func TestSubmitReview_UnknownProfessional(t *testing.T) {
	f := newFixture()
	svc := NewReviewService(f.store, testLogger())

	_, err := svc.SubmitReview(context.Background(), domain.ReviewParams{
		ProfessionalID: uuid.New(),
		CustomerName:   "A",
		Rating:         5,
	})
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestVerifyReview(t *testing.T) {
	f := newFixture()
	pro := f.activeProfessional(f.basic, testNow.AddDate(0, 0, 10))
	svc := NewReviewService(f.store, testLogger())
	ctx := context.Background()

	review, err := svc.SubmitReview(ctx, domain.ReviewParams{ProfessionalID: pro.ID, CustomerName: "A", Rating: 5})
	require.NoError(t, err)
	assert.False(t, review.IsVerified)

	verified, err := svc.Verify(ctx, review.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = svc.Verify(ctx, uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
