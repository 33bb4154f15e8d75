// Package service contains the business logic layer.
//
// This file implements the professional directory: signup, profiles,
// categories and search.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ProfessionalService defines operations on professionals and categories.
type ProfessionalService interface {
	// Register creates a professional in the pending state on the chosen plan.
	// Returns domain.ECONFLICT if the email is already registered.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.Professional, error)

	// Get returns a professional by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Professional, error)

	// UpdateProfile edits the public profile. Only active professionals may
	// edit.
	UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Professional, error)

	// Search returns active professionals matching the query, best ranked
	// first.
	Search(ctx context.Context, params domain.SearchParams) ([]domain.RankedProfessional, error)

	// CreateCategory adds a category. The slug is derived from the name.
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)

	// ListCategories returns all categories by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// =============================================================================
// Implementation
// =============================================================================

type professionalService struct {
	store  repository.Store
	plans  PlanService
	logger *slog.Logger
	now    func() time.Time
}

// NewProfessionalService creates a new ProfessionalService.
func NewProfessionalService(store repository.Store, plans PlanService, logger *slog.Logger) ProfessionalService {
	return &professionalService{
		store:  store,
		plans:  plans,
		logger: logger,
		now:    time.Now,
	}
}

const (
	maxProfessionalNameLength = 120
	maxDescriptionLength      = 2000
	maxCategoryNameLength     = 80
)

func (s *professionalService) Register(ctx context.Context, params domain.RegisterParams) (*domain.Professional, error) {
	const op = "professional.register"

	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	fields := make(map[string]string)
	if params.Name == "" {
		fields["name"] = "Name is required"
	} else if len(params.Name) > maxProfessionalNameLength {
		fields["name"] = "Name is too long"
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		fields["email"] = "A valid email is required"
	}
	if len(params.Description) > maxDescriptionLength {
		fields["description"] = "Description is too long"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Op: op, Fields: fields}
	}

	if _, err := s.plans.Get(ctx, params.PlanID); err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.NewValidationError(op, "plan_id", "Unknown plan")
		}
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, params.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewValidationError(op, "category_id", "Unknown category")
		}
		return nil, domain.Internal(err, op, "failed to get category")
	}

	row, err := s.store.CreateProfessional(ctx, repository.CreateProfessionalParams{
		Name:        params.Name,
		Email:       params.Email,
		Phone:       strings.TrimSpace(params.Phone),
		City:        strings.TrimSpace(params.City),
		Description: params.Description,
		CategoryID:  params.CategoryID,
		PlanID:      params.PlanID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "A professional with this email is already registered")
		}
		return nil, domain.Internal(err, op, "failed to create professional")
	}

	pro := professionalFromRow(row)
	s.logger.Info("professional registered", "professional_id", pro.ID, "plan_id", pro.PlanID)
	return pro, nil
}

func (s *professionalService) Get(ctx context.Context, id uuid.UUID) (*domain.Professional, error) {
	const op = "professional.get"

	row, err := s.store.GetProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "professional", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get professional")
	}
	return professionalFromRow(row), nil
}

func (s *professionalService) UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Professional, error) {
	const op = "professional.update_profile"

	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, domain.NewValidationError(op, "name", "Name is required")
	}
	if len(params.Name) > maxProfessionalNameLength {
		return nil, domain.NewValidationError(op, "name", "Name is too long")
	}
	if len(params.Description) > maxDescriptionLength {
		return nil, domain.NewValidationError(op, "description", "Description is too long")
	}

	pro, err := s.Get(ctx, params.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if err := pro.RequireActive(op, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProfessionalProfile(ctx, repository.UpdateProfessionalProfileParams{
		ID:          pro.ID,
		Name:        params.Name,
		Phone:       strings.TrimSpace(params.Phone),
		City:        strings.TrimSpace(params.City),
		Description: params.Description,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to update profile")
	}

	return s.Get(ctx, pro.ID)
}

const defaultSearchLimit = 50

func (s *professionalService) Search(ctx context.Context, params domain.SearchParams) ([]domain.RankedProfessional, error) {
	const op = "professional.search"

	limit := params.Limit
	if limit <= 0 || limit > domain.MaxPerPage {
		limit = defaultSearchLimit
	}

	now := s.now()
	// Lapsed rows are filtered before the limit so they cannot take a slot.
	rows, err := s.store.SearchProfessionals(ctx, repository.SearchProfessionalsParams{
		CategoryID: nullUUID(params.CategoryID),
		Query:      strings.TrimSpace(params.Query),
		Limit:      int32(limit),
		Now:        now,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to search professionals")
	}

	return domain.Rank(rankingCandidatesFromRows(rows), now), nil
}

func (s *professionalService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	const op = "professional.create_category"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "Name is required")
	}
	if len(name) > maxCategoryNameLength {
		return nil, domain.NewValidationError(op, "name", "Name is too long")
	}
	slug := domain.Slugify(name)
	if slug == "" {
		return nil, domain.NewValidationError(op, "name", "Name must contain letters or digits")
	}

	row, err := s.store.CreateCategory(ctx, repository.CreateCategoryParams{Name: name, Slug: slug})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "A category with this name already exists")
		}
		return nil, domain.Internal(err, op, "failed to create category")
	}

	category := categoryFromRow(row)
	s.logger.Info("category created", "category_id", category.ID, "slug", category.Slug)
	return &category, nil
}

func (s *professionalService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "professional.list_categories"

	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list categories")
	}

	categories := make([]domain.Category, len(rows))
	for i, row := range rows {
		categories[i] = categoryFromRow(row)
	}
	// Accent-aware order, so "Elétrica" sorts next to "Eletricista".
	collator := collate.New(language.BrazilianPortuguese)
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return collator.CompareString(a.Name, b.Name)
	})
	return categories, nil
}
