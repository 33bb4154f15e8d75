package handler

import (
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
)

// JSON representations of domain values. Money and ratings are rendered as
// fixed-point strings so clients never see float rounding.

type UsageResponse struct {
	Resource         domain.QuotaResource `json:"resource"`
	Used             int64                `json:"used"`
	Limit            *int64               `json:"limit"`
	Remaining        *int64               `json:"remaining"`
	Unlimited        bool                 `json:"unlimited"`
	LimitReached     bool                 `json:"limit_reached"`
	ApproachingLimit bool                 `json:"approaching_limit"`
}

func newUsageResponse(s domain.QuotaSnapshot) UsageResponse {
	resp := UsageResponse{
		Resource:         s.Resource,
		Used:             s.Used,
		Unlimited:        s.Unlimited,
		LimitReached:     s.LimitReached,
		ApproachingLimit: s.ApproachingLimit,
	}
	if !s.Unlimited {
		limit, remaining := s.Limit, s.Remaining
		resp.Limit = &limit
		resp.Remaining = &remaining
	}
	return resp
}

type PlanResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	MaxContacts  *int      `json:"max_contacts"`
	MaxPhotos    *int      `json:"max_photos"`
	MonthlyPrice string    `json:"monthly_price"`
	Currency     string    `json:"currency"`
	IsFeatured   bool      `json:"is_featured"`
}

func newPlanResponse(p domain.Plan) PlanResponse {
	return PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		MaxContacts:  p.MaxContacts,
		MaxPhotos:    p.MaxPhotos,
		MonthlyPrice: p.MonthlyPrice.StringFixed(2),
		Currency:     "BRL",
		IsFeatured:   p.IsFeatured,
	}
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

func newCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

type ProfessionalResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone,omitempty"`
	City                  string     `json:"city,omitempty"`
	Description           string     `json:"description,omitempty"`
	CategoryID            uuid.UUID  `json:"category_id"`
	PlanID                uuid.UUID  `json:"plan_id"`
	Active                bool       `json:"active"`
	InactiveReason        string     `json:"inactive_reason,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	Rating                string     `json:"rating"`
	TotalReviews          int        `json:"total_reviews"`
	CreatedAt             time.Time  `json:"created_at"`
}

// newProfessionalResponse reports the effective subscription state at now,
// not the stored status, so a lapsed professional never reads as active.
func newProfessionalResponse(p domain.Professional, now time.Time) ProfessionalResponse {
	return ProfessionalResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		Email:                 p.Email,
		Phone:                 p.Phone,
		City:                  p.City,
		Description:           p.Description,
		CategoryID:            p.CategoryID,
		PlanID:                p.PlanID,
		Active:                p.IsActive(now),
		InactiveReason:        string(p.InactiveReason(now)),
		SubscriptionExpiresAt: p.SubscriptionExpiresAt,
		Rating:                p.Rating.StringFixed(2),
		TotalReviews:          p.TotalReviews,
		CreatedAt:             p.CreatedAt,
	}
}

type RankedResponse struct {
	Position     int       `json:"position"`
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	City         string    `json:"city,omitempty"`
	Description  string    `json:"description,omitempty"`
	Rating       string    `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	IsFeatured   bool      `json:"is_featured"`
}

func newRankedResponses(ranked []domain.RankedProfessional) []RankedResponse {
	items := make([]RankedResponse, len(ranked))
	for i, r := range ranked {
		items[i] = RankedResponse{
			Position:     r.Position,
			ID:           r.Professional.ID,
			Name:         r.Professional.Name,
			City:         r.Professional.City,
			Description:  r.Professional.Description,
			Rating:       r.Professional.Rating.StringFixed(2),
			TotalReviews: r.Professional.TotalReviews,
			IsFeatured:   r.IsFeatured,
		}
	}
	return items
}

type RankingPageResponse struct {
	CategoryID uuid.UUID        `json:"category_id"`
	Items      []RankedResponse `json:"items"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

func newRankingPageResponse(p *domain.RankingPage) RankingPageResponse {
	return RankingPageResponse{
		CategoryID: p.CategoryID,
		Items:      newRankedResponses(p.Items),
		Page:       p.Page.Number,
		PerPage:    p.Page.PerPage,
		Total:      p.Total,
		TotalPages: p.Page.TotalPages(p.Total),
	}
}

type ContactResponse struct {
	ID            uuid.UUID            `json:"id"`
	CustomerName  string               `json:"customer_name"`
	ContactMethod domain.ContactMethod `json:"contact_method"`
	CreatedAt     time.Time            `json:"created_at"`
	Usage         UsageResponse        `json:"usage"`
}

type ReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func newReviewResponse(r domain.ReviewEvent) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		IsVerified:   r.IsVerified,
		CreatedAt:    r.CreatedAt,
	}
}

type NotificationResponse struct {
	ID            uuid.UUID               `json:"id"`
	Type          domain.NotificationType `json:"type"`
	CustomerName  string                  `json:"customer_name"`
	ContactMethod domain.ContactMethod    `json:"contact_method,omitempty"`
	Message       string                  `json:"message,omitempty"`
	Rating        int                     `json:"rating,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	IsRead        bool                    `json:"is_read"`
}

type FeedResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

func newFeedResponse(f *domain.Feed) FeedResponse {
	items := make([]NotificationResponse, len(f.Items))
	for i, n := range f.Items {
		items[i] = NotificationResponse{
			ID:            n.ID,
			Type:          n.Type,
			CustomerName:  n.CustomerName,
			ContactMethod: n.ContactMethod,
			Message:       n.Message,
			Rating:        n.Rating,
			CreatedAt:     n.CreatedAt,
			IsRead:        n.IsRead,
		}
	}
	return FeedResponse{Items: items, UnreadCount: f.UnreadCount}
}

type PhotoResponse struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryResponse struct {
	FromStatus domain.ProfessionalStatus `json:"from_status"`
	ToStatus   domain.ProfessionalStatus `json:"to_status"`
	PlanID     uuid.UUID                 `json:"plan_id"`
	ExpiresAt  *time.Time                `json:"expires_at"`
	Source     string                    `json:"source"`
	CreatedAt  time.Time                 `json:"created_at"`
}
