package repository

import (
	"context"

	"github.com/google/uuid"
)

const planColumns = `id, name, slug, max_contacts, max_photos, monthly_price, is_featured, stripe_price_id, created_at`

func scanPlan(row interface{ Scan(...interface{}) error }) (Plan, error) {
	var i Plan
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.MaxContacts,
		&i.MaxPhotos,
		&i.MonthlyPrice,
		&i.IsFeatured,
		&i.StripePriceID,
		&i.CreatedAt,
	)
	return i, err
}

const getPlan = `-- name: GetPlan :one
SELECT ` + planColumns + ` FROM plans
WHERE id = $1
`

func (q *Queries) GetPlan(ctx context.Context, id uuid.UUID) (Plan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, getPlan, id))
}

const getPlanByStripePriceID = `-- name: GetPlanByStripePriceID :one
SELECT ` + planColumns + ` FROM plans
WHERE stripe_price_id = $1
`

func (q *Queries) GetPlanByStripePriceID(ctx context.Context, stripePriceID string) (Plan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, getPlanByStripePriceID, stripePriceID))
}

const listPlans = `-- name: ListPlans :many
SELECT ` + planColumns + ` FROM plans
ORDER BY monthly_price ASC, name ASC
`

func (q *Queries) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := q.db.QueryContext(ctx, listPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Plan
	for rows.Next() {
		i, err := scanPlan(rows)
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

const setPlanStripePriceID = `-- name: SetPlanStripePriceID :one
UPDATE plans SET stripe_price_id = $2
WHERE slug = $1
RETURNING ` + planColumns + `
`

type SetPlanStripePriceIDParams struct {
	Slug          string
	StripePriceID string
}

func (q *Queries) SetPlanStripePriceID(ctx context.Context, arg SetPlanStripePriceIDParams) (Plan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, setPlanStripePriceID, arg.Slug, arg.StripePriceID))
}
