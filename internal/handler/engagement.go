// This file implements the customer-facing forms.
//
// Routes:
//   - POST /professionals/{id}/contacts -> SubmitContact
//   - POST /professionals/{id}/reviews  -> SubmitReview
//   - GET  /professionals/{id}/reviews  -> ListReviews
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
)

const defaultReviewListLimit = 20

// EngagementHandler records customer contacts and reviews.
type EngagementHandler struct {
	quota   service.QuotaService
	reviews service.ReviewService
	logger  *slog.Logger
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(quota service.QuotaService, reviews service.ReviewService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		quota:   quota,
		reviews: reviews,
		logger:  logger,
	}
}

// RegisterRoutes registers the form routes. limitContacts wraps the contact
// route with abuse protection.
func (h *EngagementHandler) RegisterRoutes(mux *http.ServeMux, limitContacts func(http.Handler) http.Handler) {
	mux.Handle("POST /professionals/{id}/contacts", limitContacts(http.HandlerFunc(h.SubmitContact)))
	mux.HandleFunc("POST /professionals/{id}/reviews", h.SubmitReview)
	mux.HandleFunc("GET /professionals/{id}/reviews", h.ListReviews)
}

type contactRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Message       string `json:"message"`
	ContactMethod string `json:"contact_method"`
}

// SubmitContact records a contact request. A full monthly quota answers 402
// with the usage numbers; an inactive subscription answers 403 with the reason.
func (h *EngagementHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.quota.SubmitContact(r.Context(), domain.ContactParams{
		ProfessionalID: id,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Message:        req.Message,
		ContactMethod:  domain.ContactMethod(req.ContactMethod),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, ContactResponse{
		ID:            result.Contact.ID,
		CustomerName:  result.Contact.CustomerName,
		ContactMethod: result.Contact.ContactMethod,
		CreatedAt:     result.Contact.CreatedAt,
		Usage:         newUsageResponse(result.Usage),
	})
}

type reviewRequest struct {
	CustomerName string `json:"customer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

func (h *EngagementHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.SubmitReview(r.Context(), domain.ReviewParams{
		ProfessionalID: id,
		CustomerName:   req.CustomerName,
		Rating:         req.Rating,
		Comment:        req.Comment,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReviewResponse(*review))
}

func (h *EngagementHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultReviewListLimit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListByProfessional(r.Context(), id, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]ReviewResponse, len(reviews))
	for i, rv := range reviews {
		resp[i] = newReviewResponse(rv)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": resp})
}
