// This file implements the professional account endpoints.
//
// Routes:
//   - POST  /professionals                       -> Register
//   - GET   /professionals/{id}                  -> Get
//   - PATCH /professionals/{id}                  -> UpdateProfile
//   - GET   /professionals/{id}/usage            -> Usage
//   - GET   /professionals/{id}/ranking          -> Position
//   - POST  /professionals/{id}/checkout         -> Checkout
//   - GET   /professionals/{id}/subscription     -> SubscriptionHistory
//
// End users are authenticated upstream; these handlers trust the path id.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
	"github.com/google/uuid"
)

// ProfessionalHandler handles professional account requests.
type ProfessionalHandler struct {
	professionals service.ProfessionalService
	quota         service.QuotaService
	ranking       service.RankingService
	subscriptions service.SubscriptionService
	logger        *slog.Logger
	now           func() time.Time
}

// NewProfessionalHandler creates a new ProfessionalHandler.
func NewProfessionalHandler(
	professionals service.ProfessionalService,
	quota service.QuotaService,
	ranking service.RankingService,
	subscriptions service.SubscriptionService,
	logger *slog.Logger,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		professionals: professionals,
		quota:         quota,
		ranking:       ranking,
		subscriptions: subscriptions,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterRoutes registers professional routes on the provided mux.
// Signup and profile reads are public. Profile edits, usage, checkout and
// subscription history act for the professional in the path and carry no
// auth here: the upstream gateway must authenticate the caller as that
// professional before forwarding.
func (h *ProfessionalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /professionals", h.Register)
	mux.HandleFunc("GET /professionals/{id}", h.Get)
	mux.HandleFunc("PATCH /professionals/{id}", h.UpdateProfile)
	mux.HandleFunc("GET /professionals/{id}/usage", h.Usage)
	mux.HandleFunc("GET /professionals/{id}/ranking", h.Position)
	mux.HandleFunc("POST /professionals/{id}/checkout", h.Checkout)
	mux.HandleFunc("GET /professionals/{id}/subscription", h.SubscriptionHistory)
}

type registerRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"category_id"`
	PlanID      uuid.UUID `json:"plan_id"`
}

// Register creates a professional in pending status. The subscription
// becomes active once the first payment is confirmed.
func (h *ProfessionalHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	pro, err := h.professionals.Register(r.Context(), domain.RegisterParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		PlanID:      req.PlanID,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newProfessionalResponse(*pro, h.now()))
}

func (h *ProfessionalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	pro, err := h.professionals.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfessionalResponse(*pro, h.now()))
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	City        *string `json:"city"`
	Description *string `json:"description"`
}

// UpdateProfile applies the fields present in the body. Absent fields keep
// their current value.
func (h *ProfessionalHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	current, err := h.professionals.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.ProfileUpdateParams{
		ProfessionalID: id,
		Name:           current.Name,
		Phone:          current.Phone,
		City:           current.City,
		Description:    current.Description,
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Phone != nil {
		params.Phone = *req.Phone
	}
	if req.City != nil {
		params.City = *req.City
	}
	if req.Description != nil {
		params.Description = *req.Description
	}

	pro, err := h.professionals.UpdateProfile(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfessionalResponse(*pro, h.now()))
}

// Usage reports contact and photo usage against the current plan.
func (h *ProfessionalHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	contacts, err := h.quota.ContactUsage(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	photos, err := h.quota.PhotoUsage(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]UsageResponse{
		"contacts": newUsageResponse(*contacts),
		"photos":   newUsageResponse(*photos),
	})
}

// Position reports where the professional ranks in their category.
// A position of 0 means they are not currently listed.
func (h *ProfessionalHandler) Position(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	position, category, err := h.ranking.PositionOf(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"position": position,
		"category": category,
		"listed":   position > 0,
	})
}

type checkoutRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

// Checkout starts a hosted payment session for the requested plan.
func (h *ProfessionalHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.PlanID == uuid.Nil {
		ErrorResponse(w, r, h.logger, domain.NewValidationError("handler.checkout", "plan_id", "Plan is required"))
		return
	}

	url, err := h.subscriptions.RequestCheckout(r.Context(), id, req.PlanID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

func (h *ProfessionalHandler) SubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	entries, err := h.subscriptions.History(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]HistoryResponse, len(entries))
	for i, e := range entries {
		resp[i] = HistoryResponse{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			PlanID:     e.PlanID,
			ExpiresAt:  e.ExpiresAt,
			Source:     e.Source,
			CreatedAt:  e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": resp})
}
