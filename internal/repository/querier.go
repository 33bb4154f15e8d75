package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Querier interface {
	// categories
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	// contact events
	CountContactEventsSince(ctx context.Context, arg CountContactEventsSinceParams) (int64, error)
	CreateContactEvent(ctx context.Context, arg CreateContactEventParams) (ContactEvent, error)
	GetContactEvent(ctx context.Context, id uuid.UUID) (ContactEvent, error)
	ListRecentContactEvents(ctx context.Context, arg ListRecentEventsParams) ([]ContactEvent, error)

	// notification read markers
	InsertReadMarker(ctx context.Context, arg InsertReadMarkerParams) (int64, error)
	ListReadEventIDs(ctx context.Context, arg ListReadEventIDsParams) ([]uuid.UUID, error)

	// payment events
	InsertPaymentEvent(ctx context.Context, arg InsertPaymentEventParams) (int64, error)
	SetPaymentEventOutcome(ctx context.Context, arg SetPaymentEventOutcomeParams) error

	// plans
	GetPlan(ctx context.Context, id uuid.UUID) (Plan, error)
	GetPlanByStripePriceID(ctx context.Context, stripePriceID string) (Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	SetPlanStripePriceID(ctx context.Context, arg SetPlanStripePriceIDParams) (Plan, error)

	// portfolio photos
	CountPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) (int64, error)
	CreatePortfolioPhoto(ctx context.Context, arg CreatePortfolioPhotoParams) (PortfolioPhoto, error)
	DeletePortfolioPhoto(ctx context.Context, id uuid.UUID) error
	GetPortfolioPhoto(ctx context.Context, id uuid.UUID) (PortfolioPhoto, error)
	ListPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) ([]PortfolioPhoto, error)

	// professionals
	CreateProfessional(ctx context.Context, arg CreateProfessionalParams) (Professional, error)
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]Professional, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (Professional, error)
	GetProfessionalByCustomerRef(ctx context.Context, paymentCustomerRef string) (Professional, error)
	GetProfessionalForUpdate(ctx context.Context, id uuid.UUID) (Professional, error)
	ListRankingCandidates(ctx context.Context, categoryID uuid.UUID) ([]RankingCandidateRow, error)
	RefreshProfessionalRating(ctx context.Context, id uuid.UUID) error
	SearchProfessionals(ctx context.Context, arg SearchProfessionalsParams) ([]RankingCandidateRow, error)
	SetPaymentCustomerRef(ctx context.Context, arg SetPaymentCustomerRefParams) error
	UpdateProfessionalProfile(ctx context.Context, arg UpdateProfessionalProfileParams) error
	UpdateProfessionalSubscription(ctx context.Context, arg UpdateProfessionalSubscriptionParams) error

	// review events
	CreateReviewEvent(ctx context.Context, arg CreateReviewEventParams) (ReviewEvent, error)
	GetReviewEvent(ctx context.Context, id uuid.UUID) (ReviewEvent, error)
	ListRecentReviewEvents(ctx context.Context, arg ListRecentEventsParams) ([]ReviewEvent, error)
	ListReviewEventsByProfessional(ctx context.Context, arg ListReviewEventsByProfessionalParams) ([]ReviewEvent, error)
	SetReviewVerified(ctx context.Context, id uuid.UUID) (ReviewEvent, error)

	// subscription history
	InsertSubscriptionHistory(ctx context.Context, arg InsertSubscriptionHistoryParams) error
	ListSubscriptionHistory(ctx context.Context, professionalID uuid.UUID) ([]SubscriptionHistory, error)
}

var _ Querier = (*Queries)(nil)
