package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const reviewEventColumns = `id, professional_id, customer_name, rating, comment, is_verified, created_at`

func scanReviewEvent(row interface{ Scan(...interface{}) error }) (ReviewEvent, error) {
	var i ReviewEvent
	err := row.Scan(
		&i.ID,
		&i.ProfessionalID,
		&i.CustomerName,
		&i.Rating,
		&i.Comment,
		&i.IsVerified,
		&i.CreatedAt,
	)
	return i, err
}

func collectReviewEvents(rows *sql.Rows) ([]ReviewEvent, error) {
	defer rows.Close()
	var items []ReviewEvent
	for rows.Next() {
		i, err := scanReviewEvent(rows)
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

const createReviewEvent = `-- name: CreateReviewEvent :one
INSERT INTO review_events (professional_id, customer_name, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING ` + reviewEventColumns + `
`

type CreateReviewEventParams struct {
	ProfessionalID uuid.UUID
	CustomerName   string
	Rating         int16
	Comment        string
}

func (q *Queries) CreateReviewEvent(ctx context.Context, arg CreateReviewEventParams) (ReviewEvent, error) {
	row := q.db.QueryRowContext(ctx, createReviewEvent,
		arg.ProfessionalID,
		arg.CustomerName,
		arg.Rating,
		arg.Comment,
	)
	return scanReviewEvent(row)
}

const getReviewEvent = `-- name: GetReviewEvent :one
SELECT ` + reviewEventColumns + ` FROM review_events
WHERE id = $1
`

func (q *Queries) GetReviewEvent(ctx context.Context, id uuid.UUID) (ReviewEvent, error) {
	return scanReviewEvent(q.db.QueryRowContext(ctx, getReviewEvent, id))
}

const listRecentReviewEvents = `-- name: ListRecentReviewEvents :many
SELECT ` + reviewEventColumns + ` FROM review_events
WHERE professional_id = $1 AND created_at >= $2
ORDER BY created_at DESC, id ASC
LIMIT $3
`

func (q *Queries) ListRecentReviewEvents(ctx context.Context, arg ListRecentEventsParams) ([]ReviewEvent, error) {
	rows, err := q.db.QueryContext(ctx, listRecentReviewEvents, arg.ProfessionalID, arg.Since, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectReviewEvents(rows)
}

const listReviewEventsByProfessional = `-- name: ListReviewEventsByProfessional :many
SELECT ` + reviewEventColumns + ` FROM review_events
WHERE professional_id = $1
ORDER BY created_at DESC, id ASC
LIMIT $2
`

type ListReviewEventsByProfessionalParams struct {
	ProfessionalID uuid.UUID
	Limit          int32
}

func (q *Queries) ListReviewEventsByProfessional(ctx context.Context, arg ListReviewEventsByProfessionalParams) ([]ReviewEvent, error) {
	rows, err := q.db.QueryContext(ctx, listReviewEventsByProfessional, arg.ProfessionalID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectReviewEvents(rows)
}

const setReviewVerified = `-- name: SetReviewVerified :one
UPDATE review_events
SET is_verified = TRUE
WHERE id = $1
RETURNING ` + reviewEventColumns + `
`

func (q *Queries) SetReviewVerified(ctx context.Context, id uuid.UUID) (ReviewEvent, error) {
	return scanReviewEvent(q.db.QueryRowContext(ctx, setReviewVerified, id))
}
