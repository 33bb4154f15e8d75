// This file implements the operator endpoints.
//
// Routes (all behind requireAdmin):
//   - POST /admin/professionals/{id}/deactivate -> Deactivate
//   - POST /admin/categories                    -> CreateCategory
//   - POST /admin/reviews/{id}/verify           -> VerifyReview
//   - POST /admin/subscriptions/expire          -> ExpireLapsed
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/service"
)

// AdminHandler handles admin HTTP requests.
type AdminHandler struct {
	subscriptions service.SubscriptionService
	professionals service.ProfessionalService
	reviews       service.ReviewService
	logger        *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	subscriptions service.SubscriptionService,
	professionals service.ProfessionalService,
	reviews service.ReviewService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		subscriptions: subscriptions,
		professionals: professionals,
		reviews:       reviews,
		logger:        logger,
	}
}

// RegisterRoutes registers admin routes with the provided middleware.
func (h *AdminHandler) RegisterRoutes(
	mux *http.ServeMux,
	requireAdmin func(http.Handler) http.Handler,
) {
	mux.Handle("POST /admin/professionals/{id}/deactivate", requireAdmin(http.HandlerFunc(h.Deactivate)))
	mux.Handle("POST /admin/categories", requireAdmin(http.HandlerFunc(h.CreateCategory)))
	mux.Handle("POST /admin/reviews/{id}/verify", requireAdmin(http.HandlerFunc(h.VerifyReview)))
	mux.Handle("POST /admin/subscriptions/expire", requireAdmin(http.HandlerFunc(h.ExpireLapsed)))
}

// Deactivate takes a professional out of the marketplace until a newer
// payment confirmation arrives.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.subscriptions.Deactivate(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	category, err := h.professionals.CreateCategory(r.Context(), req.Name)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCategoryResponse(*category))
}

func (h *AdminHandler) VerifyReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Verify(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newReviewResponse(*review))
}

// ExpireLapsed runs the status sweep immediately.
func (h *AdminHandler) ExpireLapsed(w http.ResponseWriter, r *http.Request) {
	expired, err := h.subscriptions.ExpireLapsed(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"expired": expired})
}
