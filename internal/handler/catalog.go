// Package handler contains the JSON HTTP handlers of the engagement engine.
//
// This file serves the public catalog: plans, categories, category rankings
// and search.
//
// Routes:
//   - GET /plans                     -> ListPlans
//   - GET /categories                -> ListCategories
//   - GET /categories/{slug}/ranking -> CategoryRanking
//   - GET /search                    -> Search
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
	"github.com/google/uuid"
)

// CatalogHandler serves read-only marketplace listings.
type CatalogHandler struct {
	plans         service.PlanService
	professionals service.ProfessionalService
	ranking       service.RankingService
	logger        *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	plans service.PlanService,
	professionals service.ProfessionalService,
	ranking service.RankingService,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		plans:         plans,
		professionals: professionals,
		ranking:       ranking,
		logger:        logger,
	}
}

// RegisterRoutes registers catalog routes on the provided mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /plans", h.ListPlans)
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{slug}/ranking", h.CategoryRanking)
	mux.HandleFunc("GET /search", h.Search)
}

func (h *CatalogHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i, p := range plans {
		resp[i] = newPlanResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": resp})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.professionals.ListCategories(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = newCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": resp})
}

// CategoryRanking returns one page of the category's ranked active
// professionals.
func (h *CatalogHandler) CategoryRanking(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	ranking, err := h.ranking.RankCategoryBySlug(r.Context(), r.PathValue("slug"), page)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newRankingPageResponse(ranking))
}

// Search matches active professionals by free text, optionally within a
// category (?category=<uuid>), ordered by ranking.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := domain.SearchParams{Query: r.URL.Query().Get("q")}

	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			BadRequestResponse(w, r, h.logger, "Invalid category")
			return
		}
		params.CategoryID = &id
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params.Limit = limit

	results, err := h.professionals.Search(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": newRankedResponses(results)})
}
