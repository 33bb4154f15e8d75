// Package repotest provides an in-memory repository.Store for service and
// handler tests. It mirrors the SQL queries closely enough that services
// behave the same against it as against PostgreSQL, including unique
// violations and sql.ErrNoRows.
//
// ExecTx serializes transactions but does not roll back: a failing fn leaves
// its earlier writes in place. Services validate before they write, so tests
// can assert "nothing was written" on the failure paths they care about.
package repotest

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DukeRupert/vitrine/internal/repository"
)

// Store is an in-memory repository.Store.
type Store struct {
	tx sync.Mutex
	mu sync.Mutex

	now      func() time.Time
	failures map[string]error

	plans         map[uuid.UUID]repository.Plan
	categories    map[uuid.UUID]repository.Category
	professionals map[uuid.UUID]repository.Professional
	contacts      map[uuid.UUID]repository.ContactEvent
	reviews       map[uuid.UUID]repository.ReviewEvent
	photos        map[uuid.UUID]repository.PortfolioPhoto
	markers       map[markerKey]repository.NotificationReadMarker
	payments      map[string]repository.PaymentEvent
	history       []repository.SubscriptionHistory
}

type markerKey struct {
	professionalID uuid.UUID
	eventID        uuid.UUID
}

var _ repository.Store = (*Store)(nil)

// New returns an empty Store whose clock is time.Now.
func New() *Store {
	return &Store{
		now:           time.Now,
		failures:      make(map[string]error),
		plans:         make(map[uuid.UUID]repository.Plan),
		categories:    make(map[uuid.UUID]repository.Category),
		professionals: make(map[uuid.UUID]repository.Professional),
		contacts:      make(map[uuid.UUID]repository.ContactEvent),
		reviews:       make(map[uuid.UUID]repository.ReviewEvent),
		photos:        make(map[uuid.UUID]repository.PortfolioPhoto),
		markers:       make(map[markerKey]repository.NotificationReadMarker),
		payments:      make(map[string]repository.PaymentEvent),
	}
}

// SetNow replaces the clock used for created_at and updated_at columns.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailOn makes every later call to method return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// ExecTx runs fn with exclusive access to the store.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	if err := s.failure("ExecTx"); err != nil {
		return err
	}
	return fn(s)
}

func (s *Store) failure(method string) error {
	return s.failures[method]
}

// =============================================================================
// Seeding helpers
// =============================================================================

// AddPlan stores p, assigning an id when it has none.
func (s *Store) AddPlan(p repository.Plan) repository.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.plans[p.ID] = p
	return p
}

// AddCategory stores c, assigning an id when it has none.
func (s *Store) AddCategory(c repository.Category) repository.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.categories[c.ID] = c
	return c
}

// AddProfessional stores p as given, assigning an id when it has none.
func (s *Store) AddProfessional(p repository.Professional) repository.Professional {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = "pending"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.professionals[p.ID] = p
	return p
}

// AddContactEvent stores e with its CreatedAt preserved.
func (s *Store) AddContactEvent(e repository.ContactEvent) repository.ContactEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.contacts[e.ID] = e
	return e
}

// AddReviewEvent stores e with its CreatedAt preserved.
func (s *Store) AddReviewEvent(e repository.ReviewEvent) repository.ReviewEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.reviews[e.ID] = e
	return e
}

// =============================================================================
// Inspection helpers
// =============================================================================

// ContactCount returns the number of stored contact events for a professional.
func (s *Store) ContactCount(professionalID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.contacts {
		if c.ProfessionalID == professionalID {
			n++
		}
	}
	return n
}

// ReadMarkerCount returns the number of read markers for a professional.
func (s *Store) ReadMarkerCount(professionalID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.markers {
		if k.professionalID == professionalID {
			n++
		}
	}
	return n
}

// PaymentEventRecord returns the stored payment event for a transaction id.
func (s *Store) PaymentEventRecord(transactionID string) (repository.PaymentEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.payments[transactionID]
	return e, ok
}

// =============================================================================
// Categories
// =============================================================================

func (s *Store) CreateCategory(ctx context.Context, arg repository.CreateCategoryParams) (repository.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateCategory"); err != nil {
		return repository.Category{}, err
	}
	for _, c := range s.categories {
		if c.Slug == arg.Slug {
			return repository.Category{}, repository.UniqueViolation("categories_slug_key")
		}
	}
	c := repository.Category{ID: uuid.New(), Name: arg.Name, Slug: arg.Slug, CreatedAt: s.now()}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (repository.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetCategory"); err != nil {
		return repository.Category{}, err
	}
	c, ok := s.categories[id]
	if !ok {
		return repository.Category{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (repository.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetCategoryBySlug"); err != nil {
		return repository.Category{}, err
	}
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return repository.Category{}, sql.ErrNoRows
}

func (s *Store) ListCategories(ctx context.Context) ([]repository.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListCategories"); err != nil {
		return nil, err
	}
	items := make([]repository.Category, 0, len(s.categories))
	for _, c := range s.categories {
		items = append(items, c)
	}
	slices.SortFunc(items, func(a, b repository.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return items, nil
}

// =============================================================================
// Contact events
// =============================================================================

func (s *Store) CountContactEventsSince(ctx context.Context, arg repository.CountContactEventsSinceParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CountContactEventsSince"); err != nil {
		return 0, err
	}
	var n int64
	for _, c := range s.contacts {
		if c.ProfessionalID == arg.ProfessionalID && !c.CreatedAt.Before(arg.Since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateContactEvent(ctx context.Context, arg repository.CreateContactEventParams) (repository.ContactEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateContactEvent"); err != nil {
		return repository.ContactEvent{}, err
	}
	if _, ok := s.professionals[arg.ProfessionalID]; !ok {
		return repository.ContactEvent{}, sql.ErrNoRows
	}
	e := repository.ContactEvent{
		ID:             uuid.New(),
		ProfessionalID: arg.ProfessionalID,
		CustomerName:   arg.CustomerName,
		CustomerEmail:  arg.CustomerEmail,
		CustomerPhone:  arg.CustomerPhone,
		Message:        arg.Message,
		ContactMethod:  arg.ContactMethod,
		CreatedAt:      s.now(),
	}
	s.contacts[e.ID] = e
	return e, nil
}

func (s *Store) GetContactEvent(ctx context.Context, id uuid.UUID) (repository.ContactEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetContactEvent"); err != nil {
		return repository.ContactEvent{}, err
	}
	e, ok := s.contacts[id]
	if !ok {
		return repository.ContactEvent{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *Store) ListRecentContactEvents(ctx context.Context, arg repository.ListRecentEventsParams) ([]repository.ContactEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListRecentContactEvents"); err != nil {
		return nil, err
	}
	var items []repository.ContactEvent
	for _, c := range s.contacts {
		if c.ProfessionalID == arg.ProfessionalID && !c.CreatedAt.Before(arg.Since) {
			items = append(items, c)
		}
	}
	slices.SortFunc(items, func(a, b repository.ContactEvent) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return truncate(items, arg.Limit), nil
}

// =============================================================================
// Notification read markers
// =============================================================================

func (s *Store) InsertReadMarker(ctx context.Context, arg repository.InsertReadMarkerParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertReadMarker"); err != nil {
		return 0, err
	}
	key := markerKey{professionalID: arg.ProfessionalID, eventID: arg.EventID}
	if _, ok := s.markers[key]; ok {
		return 0, nil
	}
	s.markers[key] = repository.NotificationReadMarker{
		ProfessionalID: arg.ProfessionalID,
		EventID:        arg.EventID,
		EventType:      arg.EventType,
		ReadAt:         s.now(),
	}
	return 1, nil
}

func (s *Store) ListReadEventIDs(ctx context.Context, arg repository.ListReadEventIDsParams) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListReadEventIDs"); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, id := range arg.EventIDs {
		if _, ok := s.markers[markerKey{professionalID: arg.ProfessionalID, eventID: id}]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// =============================================================================
// Payment events
// =============================================================================

func (s *Store) InsertPaymentEvent(ctx context.Context, arg repository.InsertPaymentEventParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertPaymentEvent"); err != nil {
		return 0, err
	}
	if _, ok := s.payments[arg.TransactionID]; ok {
		return 0, nil
	}
	s.payments[arg.TransactionID] = repository.PaymentEvent{
		ProviderTransactionID: arg.TransactionID,
		EventType:             arg.EventType,
		Payload:               arg.Payload,
		Outcome:               "received",
		ReceivedAt:            s.now(),
	}
	return 1, nil
}

func (s *Store) SetPaymentEventOutcome(ctx context.Context, arg repository.SetPaymentEventOutcomeParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetPaymentEventOutcome"); err != nil {
		return err
	}
	e, ok := s.payments[arg.TransactionID]
	if !ok {
		return nil
	}
	e.Outcome = arg.Outcome
	if arg.ProfessionalID.Valid {
		e.ProfessionalID = arg.ProfessionalID
	}
	s.payments[arg.TransactionID] = e
	return nil
}

// =============================================================================
// Plans
// =============================================================================

func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (repository.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetPlan"); err != nil {
		return repository.Plan{}, err
	}
	p, ok := s.plans[id]
	if !ok {
		return repository.Plan{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetPlanByStripePriceID(ctx context.Context, stripePriceID string) (repository.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetPlanByStripePriceID"); err != nil {
		return repository.Plan{}, err
	}
	for _, p := range s.plans {
		if p.StripePriceID.Valid && p.StripePriceID.String == stripePriceID {
			return p, nil
		}
	}
	return repository.Plan{}, sql.ErrNoRows
}

func (s *Store) SetPlanStripePriceID(ctx context.Context, arg repository.SetPlanStripePriceIDParams) (repository.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetPlanStripePriceID"); err != nil {
		return repository.Plan{}, err
	}
	var target *repository.Plan
	for id, p := range s.plans {
		if p.Slug == arg.Slug {
			p := s.plans[id]
			target = &p
			continue
		}
		if p.StripePriceID.Valid && p.StripePriceID.String == arg.StripePriceID {
			return repository.Plan{}, repository.UniqueViolation("plans_stripe_price_id_key")
		}
	}
	if target == nil {
		return repository.Plan{}, sql.ErrNoRows
	}
	target.StripePriceID = sql.NullString{String: arg.StripePriceID, Valid: true}
	s.plans[target.ID] = *target
	return *target, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]repository.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListPlans"); err != nil {
		return nil, err
	}
	items := make([]repository.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		items = append(items, p)
	}
	slices.SortFunc(items, func(a, b repository.Plan) int {
		if c := a.MonthlyPrice.Cmp(b.MonthlyPrice); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return items, nil
}

// =============================================================================
// Portfolio photos
// =============================================================================

func (s *Store) CountPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CountPortfolioPhotos"); err != nil {
		return 0, err
	}
	var n int64
	for _, p := range s.photos {
		if p.ProfessionalID == professionalID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreatePortfolioPhoto(ctx context.Context, arg repository.CreatePortfolioPhotoParams) (repository.PortfolioPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreatePortfolioPhoto"); err != nil {
		return repository.PortfolioPhoto{}, err
	}
	position := int32(0)
	for _, p := range s.photos {
		if p.ProfessionalID == arg.ProfessionalID && p.Position >= position {
			position = p.Position + 1
		}
	}
	p := repository.PortfolioPhoto{
		ID:             arg.ID,
		ProfessionalID: arg.ProfessionalID,
		StorageKey:     arg.StorageKey,
		ThumbnailKey:   arg.ThumbnailKey,
		ContentType:    arg.ContentType,
		SizeBytes:      arg.SizeBytes,
		Width:          arg.Width,
		Height:         arg.Height,
		Position:       position,
		CreatedAt:      s.now(),
	}
	s.photos[p.ID] = p
	return p, nil
}

func (s *Store) DeletePortfolioPhoto(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeletePortfolioPhoto"); err != nil {
		return err
	}
	delete(s.photos, id)
	return nil
}

func (s *Store) GetPortfolioPhoto(ctx context.Context, id uuid.UUID) (repository.PortfolioPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetPortfolioPhoto"); err != nil {
		return repository.PortfolioPhoto{}, err
	}
	p, ok := s.photos[id]
	if !ok {
		return repository.PortfolioPhoto{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) ([]repository.PortfolioPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListPortfolioPhotos"); err != nil {
		return nil, err
	}
	var items []repository.PortfolioPhoto
	for _, p := range s.photos {
		if p.ProfessionalID == professionalID {
			items = append(items, p)
		}
	}
	slices.SortFunc(items, func(a, b repository.PortfolioPhoto) int {
		return int(a.Position - b.Position)
	})
	return items, nil
}

// =============================================================================
// Professionals
// =============================================================================

func (s *Store) CreateProfessional(ctx context.Context, arg repository.CreateProfessionalParams) (repository.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateProfessional"); err != nil {
		return repository.Professional{}, err
	}
	for _, p := range s.professionals {
		if p.Email == arg.Email {
			return repository.Professional{}, repository.UniqueViolation("professionals_email_key")
		}
	}
	now := s.now()
	p := repository.Professional{
		ID:          uuid.New(),
		Name:        arg.Name,
		Email:       arg.Email,
		Phone:       arg.Phone,
		City:        arg.City,
		Description: arg.Description,
		CategoryID:  arg.CategoryID,
		PlanID:      arg.PlanID,
		Status:      "pending",
		Rating:      decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.professionals[p.ID] = p
	return p, nil
}

func (s *Store) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]repository.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ExpireLapsedSubscriptions"); err != nil {
		return nil, err
	}
	var expired []repository.Professional
	for id, p := range s.professionals {
		if p.Status == "active" && p.SubscriptionExpiresAt.Valid && p.SubscriptionExpiresAt.Time.Before(now) {
			p.Status = "inactive"
			p.StatusReason = "expired"
			p.UpdatedAt = s.now()
			s.professionals[id] = p
			expired = append(expired, p)
		}
	}
	return expired, nil
}

func (s *Store) GetProfessional(ctx context.Context, id uuid.UUID) (repository.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetProfessional"); err != nil {
		return repository.Professional{}, err
	}
	p, ok := s.professionals[id]
	if !ok {
		return repository.Professional{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetProfessionalByCustomerRef(ctx context.Context, paymentCustomerRef string) (repository.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetProfessionalByCustomerRef"); err != nil {
		return repository.Professional{}, err
	}
	for _, p := range s.professionals {
		if p.PaymentCustomerRef.Valid && p.PaymentCustomerRef.String == paymentCustomerRef {
			return p, nil
		}
	}
	return repository.Professional{}, sql.ErrNoRows
}

// GetProfessionalForUpdate relies on ExecTx serialization for the lock.
func (s *Store) GetProfessionalForUpdate(ctx context.Context, id uuid.UUID) (repository.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetProfessionalForUpdate"); err != nil {
		return repository.Professional{}, err
	}
	p, ok := s.professionals[id]
	if !ok {
		return repository.Professional{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListRankingCandidates(ctx context.Context, categoryID uuid.UUID) ([]repository.RankingCandidateRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListRankingCandidates"); err != nil {
		return nil, err
	}
	var rows []repository.RankingCandidateRow
	for _, p := range s.professionals {
		if p.CategoryID == categoryID && p.Status == "active" {
			rows = append(rows, repository.RankingCandidateRow{
				Professional: p,
				IsFeatured:   s.plans[p.PlanID].IsFeatured,
			})
		}
	}
	return rows, nil
}

func (s *Store) RefreshProfessionalRating(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("RefreshProfessionalRating"); err != nil {
		return err
	}
	p, ok := s.professionals[id]
	if !ok {
		return nil
	}
	var sum, count int64
	for _, r := range s.reviews {
		if r.ProfessionalID == id {
			sum += int64(r.Rating)
			count++
		}
	}
	p.TotalReviews = int32(count)
	p.Rating = decimal.Zero
	if count > 0 {
		p.Rating = decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
	}
	p.UpdatedAt = s.now()
	s.professionals[id] = p
	return nil
}

func (s *Store) SearchProfessionals(ctx context.Context, arg repository.SearchProfessionalsParams) ([]repository.RankingCandidateRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SearchProfessionals"); err != nil {
		return nil, err
	}
	query := strings.ToLower(arg.Query)
	var rows []repository.RankingCandidateRow
	for _, p := range s.professionals {
		if p.Status != "active" || !p.SubscriptionExpiresAt.Valid || p.SubscriptionExpiresAt.Time.Before(arg.Now) {
			continue
		}
		if arg.CategoryID.Valid && p.CategoryID != arg.CategoryID.UUID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) &&
			!strings.Contains(strings.ToLower(p.City), query) {
			continue
		}
		rows = append(rows, repository.RankingCandidateRow{
			Professional: p,
			IsFeatured:   s.plans[p.PlanID].IsFeatured,
		})
	}
	slices.SortFunc(rows, func(a, b repository.RankingCandidateRow) int {
		if c := b.Rating.Cmp(a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalReviews, a.TotalReviews); c != 0 {
			return c
		}
		if a.IsFeatured != b.IsFeatured {
			if a.IsFeatured {
				return -1
			}
			return 1
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return truncate(rows, arg.Limit), nil
}

func (s *Store) SetPaymentCustomerRef(ctx context.Context, arg repository.SetPaymentCustomerRefParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetPaymentCustomerRef"); err != nil {
		return err
	}
	for id, p := range s.professionals {
		if id != arg.ID && p.PaymentCustomerRef.Valid && p.PaymentCustomerRef.String == arg.PaymentCustomerRef {
			return repository.UniqueViolation("professionals_payment_customer_ref_key")
		}
	}
	p, ok := s.professionals[arg.ID]
	if !ok {
		return nil
	}
	p.PaymentCustomerRef = sql.NullString{String: arg.PaymentCustomerRef, Valid: true}
	p.UpdatedAt = s.now()
	s.professionals[arg.ID] = p
	return nil
}

func (s *Store) UpdateProfessionalProfile(ctx context.Context, arg repository.UpdateProfessionalProfileParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateProfessionalProfile"); err != nil {
		return err
	}
	p, ok := s.professionals[arg.ID]
	if !ok {
		return nil
	}
	p.Name = arg.Name
	p.Phone = arg.Phone
	p.City = arg.City
	p.Description = arg.Description
	p.UpdatedAt = s.now()
	s.professionals[arg.ID] = p
	return nil
}

func (s *Store) UpdateProfessionalSubscription(ctx context.Context, arg repository.UpdateProfessionalSubscriptionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateProfessionalSubscription"); err != nil {
		return err
	}
	p, ok := s.professionals[arg.ID]
	if !ok {
		return nil
	}
	p.PlanID = arg.PlanID
	p.Status = arg.Status
	p.StatusReason = arg.StatusReason
	p.SubscriptionExpiresAt = arg.SubscriptionExpiresAt
	p.SubscriptionEventAt = arg.SubscriptionEventAt
	p.UpdatedAt = s.now()
	s.professionals[arg.ID] = p
	return nil
}

// =============================================================================
// Review events
// =============================================================================

func (s *Store) CreateReviewEvent(ctx context.Context, arg repository.CreateReviewEventParams) (repository.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateReviewEvent"); err != nil {
		return repository.ReviewEvent{}, err
	}
	if _, ok := s.professionals[arg.ProfessionalID]; !ok {
		return repository.ReviewEvent{}, sql.ErrNoRows
	}
	e := repository.ReviewEvent{
		ID:             uuid.New(),
		ProfessionalID: arg.ProfessionalID,
		CustomerName:   arg.CustomerName,
		Rating:         arg.Rating,
		Comment:        arg.Comment,
		CreatedAt:      s.now(),
	}
	s.reviews[e.ID] = e
	return e, nil
}

func (s *Store) GetReviewEvent(ctx context.Context, id uuid.UUID) (repository.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetReviewEvent"); err != nil {
		return repository.ReviewEvent{}, err
	}
	e, ok := s.reviews[id]
	if !ok {
		return repository.ReviewEvent{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *Store) ListRecentReviewEvents(ctx context.Context, arg repository.ListRecentEventsParams) ([]repository.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListRecentReviewEvents"); err != nil {
		return nil, err
	}
	var items []repository.ReviewEvent
	for _, r := range s.reviews {
		if r.ProfessionalID == arg.ProfessionalID && !r.CreatedAt.Before(arg.Since) {
			items = append(items, r)
		}
	}
	slices.SortFunc(items, func(a, b repository.ReviewEvent) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return truncate(items, arg.Limit), nil
}

func (s *Store) ListReviewEventsByProfessional(ctx context.Context, arg repository.ListReviewEventsByProfessionalParams) ([]repository.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListReviewEventsByProfessional"); err != nil {
		return nil, err
	}
	var items []repository.ReviewEvent
	for _, r := range s.reviews {
		if r.ProfessionalID == arg.ProfessionalID {
			items = append(items, r)
		}
	}
	slices.SortFunc(items, func(a, b repository.ReviewEvent) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return truncate(items, arg.Limit), nil
}

func (s *Store) SetReviewVerified(ctx context.Context, id uuid.UUID) (repository.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetReviewVerified"); err != nil {
		return repository.ReviewEvent{}, err
	}
	e, ok := s.reviews[id]
	if !ok {
		return repository.ReviewEvent{}, sql.ErrNoRows
	}
	e.IsVerified = true
	s.reviews[id] = e
	return e, nil
}

// =============================================================================
// Subscription history
// =============================================================================

func (s *Store) InsertSubscriptionHistory(ctx context.Context, arg repository.InsertSubscriptionHistoryParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertSubscriptionHistory"); err != nil {
		return err
	}
	s.history = append(s.history, repository.SubscriptionHistory{
		ID:             uuid.New(),
		ProfessionalID: arg.ProfessionalID,
		FromStatus:     arg.FromStatus,
		ToStatus:       arg.ToStatus,
		PlanID:         arg.PlanID,
		ExpiresAt:      arg.ExpiresAt,
		Source:         arg.Source,
		CreatedAt:      s.now(),
	})
	return nil
}

func (s *Store) ListSubscriptionHistory(ctx context.Context, professionalID uuid.UUID) ([]repository.SubscriptionHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListSubscriptionHistory"); err != nil {
		return nil, err
	}
	var items []repository.SubscriptionHistory
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ProfessionalID == professionalID {
			items = append(items, s.history[i])
		}
	}
	return items, nil
}

func newestFirst(a, b time.Time, aID, bID uuid.UUID) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return bytes.Compare(aID[:], bID[:])
}

func truncate[T any](items []T, limit int32) []T {
	if limit > 0 && len(items) > int(limit) {
		return items[:limit]
	}
	return items
}
