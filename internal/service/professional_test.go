package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfessionalService(f *fixture) ProfessionalService {
	svc := NewProfessionalService(f.store, f.plans, testLogger())
	svc.(*professionalService).now = fixedClock(testNow)
	return svc
}

func TestRegister(t *testing.T) {
	f := newFixture()
	svc := newTestProfessionalService(f)
	ctx := context.Background()

	params := domain.RegisterParams{
		Name:       "  Gustavo Reis ",
		Email:      "Gustavo@Example.com",
		City:       "Campinas",
		CategoryID: f.category.ID,
		PlanID:     f.pro.ID,
	}

	pro, err := svc.Register(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "Gustavo Reis", pro.Name)
	assert.Equal(t, "gustavo@example.com", pro.Email)
	assert.Equal(t, domain.StatusPending, pro.Status)
	assert.Equal(t, f.pro.ID, pro.PlanID)
	assert.Equal(t, domain.InactiveReasonPending, pro.InactiveReason(testNow))

	_, err = svc.Register(ctx, params)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture()
	svc := newTestProfessionalService(f)

	tests := []struct {
		name   string
		mutate func(p *domain.RegisterParams)
		field  string
	}{
		{"missing name", func(p *domain.RegisterParams) { p.Name = "" }, "name"},
		{"bad email", func(p *domain.RegisterParams) { p.Email = "not-an-email" }, "email"},
		{"unknown plan", func(p *domain.RegisterParams) { p.PlanID = uuid.New() }, "plan_id"},
		{"unknown category", func(p *domain.RegisterParams) { p.CategoryID = uuid.New() }, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := domain.RegisterParams{
				Name:       "Helena",
				Email:      "helena@example.com",
				CategoryID: f.category.ID,
				PlanID:     f.basic.ID,
			}
			tt.mutate(&params)

			_, err := svc.Register(context.Background(), params)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	active := f.activeProfessional(f.basic, testNow.AddDate(0, 0, 10))
	lapsed := f.activeProfessional(f.basic, testNow.Add(-time.Hour))
	svc := newTestProfessionalService(f)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, domain.ProfileUpdateParams{
		ProfessionalID: active.ID,
		Name:           "Ana Souza Elétrica",
		City:           "Santos",
		Description:    "Instalações residenciais",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza Elétrica", updated.Name)
	assert.Equal(t, "Santos", updated.City)

	_, err = svc.UpdateProfile(ctx, domain.ProfileUpdateParams{ProfessionalID: lapsed.ID, Name: "X"})
	var inactiveErr *domain.SubscriptionInactiveError
	require.True(t, errors.As(err, &inactiveErr))
	assert.Equal(t, domain.InactiveReasonExpired, inactiveErr.Reason)
}

func TestSearch(t *testing.T) {
	f := newFixture()
	future := testNow.AddDate(0, 0, 10)
	best := f.rated(f.basic, "4.90", 3, future)
	best.Description = "Eletricista residencial"
	f.store.AddProfessional(best)
	other := f.rated(f.basic, "4.10", 3, future)
	other.Description = "Reparos elétricos e eletricista de plantão"
	f.store.AddProfessional(other)
	lapsed := f.rated(f.basic, "5.00", 3, testNow.Add(-time.Hour))
	lapsed.Description = "Eletricista"
	f.store.AddProfessional(lapsed)

	svc := newTestProfessionalService(f)
	results, err := svc.Search(context.Background(), domain.SearchParams{Query: "eletricista"})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, best.ID, results[0].Professional.ID)
	assert.Equal(t, other.ID, results[1].Professional.ID)
}

func TestSearch_LapsedProfessionalsDoNotTakeLimitSlots(t *testing.T) {
	f := newFixture()
	future := testNow.AddDate(0, 0, 10)
	f.rated(f.basic, "5.00", 9, testNow.Add(-time.Hour)) // lapsed, stored active
	first := f.rated(f.basic, "4.50", 2, future)
	second := f.rated(f.basic, "4.00", 2, future)

	svc := newTestProfessionalService(f)
	results, err := svc.Search(context.Background(), domain.SearchParams{Limit: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].Professional.ID)
	assert.Equal(t, second.ID, results[1].Professional.ID)
}

func TestSearch_TiesBreakByFeaturedThenID(t *testing.T) {
	f := newFixture()
	future := testNow.AddDate(0, 0, 10)
	for i := 0; i < 3; i++ {
		f.rated(f.basic, "4.00", 1, future)
	}
	featured := f.rated(f.premium, "4.00", 1, future)

	svc := newTestProfessionalService(f)
	results, err := svc.Search(context.Background(), domain.SearchParams{Limit: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, featured.ID, results[0].Professional.ID)

	all, err := svc.Search(context.Background(), domain.SearchParams{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, all[1].Professional.ID, results[1].Professional.ID)
}

func TestCategories(t *testing.T) {
	f := newFixture()
	svc := newTestProfessionalService(f)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Elétrica & Hidráulica")
	require.NoError(t, err)
	assert.Equal(t, "eletrica-hidraulica", category.Slug)

	_, err = svc.CreateCategory(ctx, "Eletrica & Hidraulica")
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	_, err = svc.CreateCategory(ctx, "   ")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Elétrica & Hidráulica", categories[0].Name)
	assert.Equal(t, "Eletricista", categories[1].Name)
}
