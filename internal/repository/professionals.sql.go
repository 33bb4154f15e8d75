package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const professionalColumns = `p.id, p.name, p.email, p.phone, p.city, p.description, p.category_id, p.plan_id,
    p.status, p.status_reason, p.subscription_expires_at, p.subscription_event_at,
    p.payment_customer_ref, p.rating, p.total_reviews, p.created_at, p.updated_at`

func professionalFields(i *Professional) []interface{} {
	return []interface{}{
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.City,
		&i.Description,
		&i.CategoryID,
		&i.PlanID,
		&i.Status,
		&i.StatusReason,
		&i.SubscriptionExpiresAt,
		&i.SubscriptionEventAt,
		&i.PaymentCustomerRef,
		&i.Rating,
		&i.TotalReviews,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

func scanProfessional(row interface{ Scan(...interface{}) error }) (Professional, error) {
	var i Professional
	err := row.Scan(professionalFields(&i)...)
	return i, err
}

const createProfessional = `-- name: CreateProfessional :one
INSERT INTO professionals AS p (name, email, phone, city, description, category_id, plan_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
RETURNING ` + professionalColumns + `
`

type CreateProfessionalParams struct {
	Name        string
	Email       string
	Phone       string
	City        string
	Description string
	CategoryID  uuid.UUID
	PlanID      uuid.UUID
}

func (q *Queries) CreateProfessional(ctx context.Context, arg CreateProfessionalParams) (Professional, error) {
	row := q.db.QueryRowContext(ctx, createProfessional,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.City,
		arg.Description,
		arg.CategoryID,
		arg.PlanID,
	)
	return scanProfessional(row)
}

const getProfessional = `-- name: GetProfessional :one
SELECT ` + professionalColumns + ` FROM professionals p
WHERE p.id = $1
`

func (q *Queries) GetProfessional(ctx context.Context, id uuid.UUID) (Professional, error) {
	return scanProfessional(q.db.QueryRowContext(ctx, getProfessional, id))
}

const getProfessionalForUpdate = `-- name: GetProfessionalForUpdate :one
SELECT ` + professionalColumns + ` FROM professionals p
WHERE p.id = $1
FOR UPDATE
`

// GetProfessionalForUpdate locks the professional row until the surrounding
// transaction ends. Quota checks and subscription transitions serialize on it.
func (q *Queries) GetProfessionalForUpdate(ctx context.Context, id uuid.UUID) (Professional, error) {
	return scanProfessional(q.db.QueryRowContext(ctx, getProfessionalForUpdate, id))
}

const getProfessionalByCustomerRef = `-- name: GetProfessionalByCustomerRef :one
SELECT ` + professionalColumns + ` FROM professionals p
WHERE p.payment_customer_ref = $1
`

func (q *Queries) GetProfessionalByCustomerRef(ctx context.Context, paymentCustomerRef string) (Professional, error) {
	return scanProfessional(q.db.QueryRowContext(ctx, getProfessionalByCustomerRef, paymentCustomerRef))
}

const updateProfessionalProfile = `-- name: UpdateProfessionalProfile :exec
UPDATE professionals
SET name = $2, phone = $3, city = $4, description = $5, updated_at = NOW()
WHERE id = $1
`

type UpdateProfessionalProfileParams struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	City        string
	Description string
}

func (q *Queries) UpdateProfessionalProfile(ctx context.Context, arg UpdateProfessionalProfileParams) error {
	_, err := q.db.ExecContext(ctx, updateProfessionalProfile,
		arg.ID,
		arg.Name,
		arg.Phone,
		arg.City,
		arg.Description,
	)
	return err
}

const updateProfessionalSubscription = `-- name: UpdateProfessionalSubscription :exec
UPDATE professionals
SET plan_id = $2,
    status = $3,
    status_reason = $4,
    subscription_expires_at = $5,
    subscription_event_at = $6,
    updated_at = NOW()
WHERE id = $1
`

type UpdateProfessionalSubscriptionParams struct {
	ID                    uuid.UUID
	PlanID                uuid.UUID
	Status                string
	StatusReason          string
	SubscriptionExpiresAt sql.NullTime
	SubscriptionEventAt   sql.NullTime
}

func (q *Queries) UpdateProfessionalSubscription(ctx context.Context, arg UpdateProfessionalSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, updateProfessionalSubscription,
		arg.ID,
		arg.PlanID,
		arg.Status,
		arg.StatusReason,
		arg.SubscriptionExpiresAt,
		arg.SubscriptionEventAt,
	)
	return err
}

const setPaymentCustomerRef = `-- name: SetPaymentCustomerRef :exec
UPDATE professionals
SET payment_customer_ref = $2, updated_at = NOW()
WHERE id = $1
`

type SetPaymentCustomerRefParams struct {
	ID                 uuid.UUID
	PaymentCustomerRef string
}

func (q *Queries) SetPaymentCustomerRef(ctx context.Context, arg SetPaymentCustomerRefParams) error {
	_, err := q.db.ExecContext(ctx, setPaymentCustomerRef, arg.ID, arg.PaymentCustomerRef)
	return err
}

const expireLapsedSubscriptions = `-- name: ExpireLapsedSubscriptions :many
UPDATE professionals AS p
SET status = 'inactive', status_reason = 'expired', updated_at = NOW()
WHERE p.status = 'active' AND p.subscription_expires_at < $1
RETURNING ` + professionalColumns + `
`

func (q *Queries) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]Professional, error) {
	rows, err := q.db.QueryContext(ctx, expireLapsedSubscriptions, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Professional
	for rows.Next() {
		i, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const refreshProfessionalRating = `-- name: RefreshProfessionalRating :exec
UPDATE professionals
SET rating = COALESCE((SELECT ROUND(AVG(r.rating)::numeric, 2) FROM review_events r WHERE r.professional_id = $1), 0),
    total_reviews = (SELECT COUNT(*) FROM review_events r WHERE r.professional_id = $1),
    updated_at = NOW()
WHERE id = $1
`

// RefreshProfessionalRating recomputes rating and total_reviews from the
// review log. It is the only statement that writes those columns.
func (q *Queries) RefreshProfessionalRating(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, refreshProfessionalRating, id)
	return err
}

type RankingCandidateRow struct {
	Professional
	IsFeatured bool
}

func scanRankingCandidates(rows *sql.Rows) ([]RankingCandidateRow, error) {
	defer rows.Close()
	var items []RankingCandidateRow
	for rows.Next() {
		var i RankingCandidateRow
		dest := append(professionalFields(&i.Professional), &i.IsFeatured)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRankingCandidates = `-- name: ListRankingCandidates :many
SELECT ` + professionalColumns + `, pl.is_featured
FROM professionals p
JOIN plans pl ON pl.id = p.plan_id
WHERE p.category_id = $1 AND p.status = 'active'
`

// ListRankingCandidates returns professionals stored as active in a category.
// Expiry is not filtered here; callers apply the activeness predicate.
func (q *Queries) ListRankingCandidates(ctx context.Context, categoryID uuid.UUID) ([]RankingCandidateRow, error) {
	rows, err := q.db.QueryContext(ctx, listRankingCandidates, categoryID)
	if err != nil {
		return nil, err
	}
	return scanRankingCandidates(rows)
}

const searchProfessionals = `-- name: SearchProfessionals :many
SELECT ` + professionalColumns + `, pl.is_featured
FROM professionals p
JOIN plans pl ON pl.id = p.plan_id
WHERE p.status = 'active'
  AND p.subscription_expires_at >= $4
  AND ($1::uuid IS NULL OR p.category_id = $1)
  AND ($2::text = '' OR p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $2 || '%' OR p.city ILIKE '%' || $2 || '%')
ORDER BY p.rating DESC, p.total_reviews DESC, pl.is_featured DESC, p.id ASC
LIMIT $3
`

type SearchProfessionalsParams struct {
	CategoryID uuid.NullUUID
	Query      string
	Limit      int32
	Now        time.Time
}

func (q *Queries) SearchProfessionals(ctx context.Context, arg SearchProfessionalsParams) ([]RankingCandidateRow, error) {
	rows, err := q.db.QueryContext(ctx, searchProfessionals, arg.CategoryID, arg.Query, arg.Limit, arg.Now)
	if err != nil {
		return nil, err
	}
	return scanRankingCandidates(rows)
}
