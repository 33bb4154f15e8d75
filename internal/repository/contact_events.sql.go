package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const contactEventColumns = `id, professional_id, customer_name, customer_email, customer_phone, message, contact_method, created_at`

func scanContactEvent(row interface{ Scan(...interface{}) error }) (ContactEvent, error) {
	var i ContactEvent
	err := row.Scan(
		&i.ID,
		&i.ProfessionalID,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.Message,
		&i.ContactMethod,
		&i.CreatedAt,
	)
	return i, err
}

const countContactEventsSince = `-- name: CountContactEventsSince :one
SELECT COUNT(*) FROM contact_events
WHERE professional_id = $1 AND created_at >= $2
`

type CountContactEventsSinceParams struct {
	ProfessionalID uuid.UUID
	Since          time.Time
}

func (q *Queries) CountContactEventsSince(ctx context.Context, arg CountContactEventsSinceParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countContactEventsSince, arg.ProfessionalID, arg.Since)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createContactEvent = `-- name: CreateContactEvent :one
INSERT INTO contact_events (professional_id, customer_name, customer_email, customer_phone, message, contact_method)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + contactEventColumns + `
`

type CreateContactEventParams struct {
	ProfessionalID uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Message        string
	ContactMethod  string
}

func (q *Queries) CreateContactEvent(ctx context.Context, arg CreateContactEventParams) (ContactEvent, error) {
	row := q.db.QueryRowContext(ctx, createContactEvent,
		arg.ProfessionalID,
		arg.CustomerName,
		arg.CustomerEmail,
		arg.CustomerPhone,
		arg.Message,
		arg.ContactMethod,
	)
	return scanContactEvent(row)
}

const getContactEvent = `-- name: GetContactEvent :one
SELECT ` + contactEventColumns + ` FROM contact_events
WHERE id = $1
`

func (q *Queries) GetContactEvent(ctx context.Context, id uuid.UUID) (ContactEvent, error) {
	return scanContactEvent(q.db.QueryRowContext(ctx, getContactEvent, id))
}

const listRecentContactEvents = `-- name: ListRecentContactEvents :many
SELECT ` + contactEventColumns + ` FROM contact_events
WHERE professional_id = $1 AND created_at >= $2
ORDER BY created_at DESC, id ASC
LIMIT $3
`

type ListRecentEventsParams struct {
	ProfessionalID uuid.UUID
	Since          time.Time
	Limit          int32
}

func (q *Queries) ListRecentContactEvents(ctx context.Context, arg ListRecentEventsParams) ([]ContactEvent, error) {
	rows, err := q.db.QueryContext(ctx, listRecentContactEvents, arg.ProfessionalID, arg.Since, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ContactEvent
	for rows.Next() {
		i, err := scanContactEvent(rows)
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
