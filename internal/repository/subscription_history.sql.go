package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const insertSubscriptionHistory = `-- name: InsertSubscriptionHistory :exec
INSERT INTO subscription_history (professional_id, from_status, to_status, plan_id, expires_at, source)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertSubscriptionHistoryParams struct {
	ProfessionalID uuid.UUID
	FromStatus     string
	ToStatus       string
	PlanID         uuid.UUID
	ExpiresAt      sql.NullTime
	Source         string
}

func (q *Queries) InsertSubscriptionHistory(ctx context.Context, arg InsertSubscriptionHistoryParams) error {
	_, err := q.db.ExecContext(ctx, insertSubscriptionHistory,
		arg.ProfessionalID,
		arg.FromStatus,
		arg.ToStatus,
		arg.PlanID,
		arg.ExpiresAt,
		arg.Source,
	)
	return err
}

const listSubscriptionHistory = `-- name: ListSubscriptionHistory :many
SELECT id, professional_id, from_status, to_status, plan_id, expires_at, source, created_at
FROM subscription_history
WHERE professional_id = $1
ORDER BY created_at DESC, id ASC
`

func (q *Queries) ListSubscriptionHistory(ctx context.Context, professionalID uuid.UUID) ([]SubscriptionHistory, error) {
	rows, err := q.db.QueryContext(ctx, listSubscriptionHistory, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubscriptionHistory
	for rows.Next() {
		var i SubscriptionHistory
		if err := rows.Scan(
			&i.ID,
			&i.ProfessionalID,
			&i.FromStatus,
			&i.ToStatus,
			&i.PlanID,
			&i.ExpiresAt,
			&i.Source,
			&i.CreatedAt,
		); err != nil {
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
