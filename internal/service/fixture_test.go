package service

import (
	"database/sql"
	"io"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/DukeRupert/vitrine/internal/repository/repotest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// testNow is mid-month in every timezone the tests use.
var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

var saoPaulo = mustLoadLocation("America/Sao_Paulo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fixture is an in-memory store seeded with the three standard plans and
// one category.
type fixture struct {
	store    *repotest.Store
	plans    PlanService
	basic    repository.Plan
	pro      repository.Plan
	premium  repository.Plan
	category repository.Category
}

func newFixture() *fixture {
	store := repotest.New()
	store.SetNow(fixedClock(testNow))

	f := &fixture{store: store}
	f.basic = store.AddPlan(repository.Plan{
		Name:          "Básico",
		Slug:          "basico",
		MaxContacts:   sql.NullInt32{Int32: 10, Valid: true},
		MaxPhotos:     sql.NullInt32{Int32: 5, Valid: true},
		MonthlyPrice:  decimal.RequireFromString("29.90"),
		StripePriceID: sql.NullString{String: "price_basico", Valid: true},
	})
	f.pro = store.AddPlan(repository.Plan{
		Name:          "Profissional",
		Slug:          "profissional",
		MaxContacts:   sql.NullInt32{Int32: 50, Valid: true},
		MaxPhotos:     sql.NullInt32{Int32: 20, Valid: true},
		MonthlyPrice:  decimal.RequireFromString("59.90"),
		StripePriceID: sql.NullString{String: "price_profissional", Valid: true},
	})
	f.premium = store.AddPlan(repository.Plan{
		Name:          "Premium",
		Slug:          "premium",
		MonthlyPrice:  decimal.RequireFromString("99.90"),
		IsFeatured:    true,
		StripePriceID: sql.NullString{String: "price_premium", Valid: true},
	})
	f.category = store.AddCategory(repository.Category{Name: "Eletricista", Slug: "eletricista"})
	f.plans = NewPlanService(store, nil, 0, testLogger())
	return f
}

// activeProfessional seeds a professional paid until expiresAt.
func (f *fixture) activeProfessional(plan repository.Plan, expiresAt time.Time) repository.Professional {
	return f.store.AddProfessional(repository.Professional{
		Name:                  "Ana Souza",
		Email:                 uuid.NewString() + "@example.com",
		CategoryID:            f.category.ID,
		PlanID:                plan.ID,
		Status:                "active",
		SubscriptionExpiresAt: sql.NullTime{Time: expiresAt, Valid: true},
		SubscriptionEventAt:   sql.NullTime{Time: expiresAt.AddDate(0, -1, 0), Valid: true},
		Rating:                decimal.Zero,
	})
}

// pendingProfessional seeds a professional who registered but never paid.
func (f *fixture) pendingProfessional(plan repository.Plan) repository.Professional {
	return f.store.AddProfessional(repository.Professional{
		Name:       "Bruno Lima",
		Email:      uuid.NewString() + "@example.com",
		CategoryID: f.category.ID,
		PlanID:     plan.ID,
		Status:     "pending",
		Rating:     decimal.Zero,
	})
}

// addContacts seeds n contacts for a professional at createdAt.
func (f *fixture) addContacts(professionalID uuid.UUID, n int, createdAt time.Time) {
	for i := 0; i < n; i++ {
		f.store.AddContactEvent(repository.ContactEvent{
			ProfessionalID: professionalID,
			CustomerName:   "Cliente",
			ContactMethod:  "whatsapp",
			CreatedAt:      createdAt,
		})
	}
}
