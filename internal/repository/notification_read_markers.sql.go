package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const insertReadMarker = `-- name: InsertReadMarker :execrows
INSERT INTO notification_read_markers (professional_id, event_id, event_type)
VALUES ($1, $2, $3)
ON CONFLICT (professional_id, event_id) DO NOTHING
`

type InsertReadMarkerParams struct {
	ProfessionalID uuid.UUID
	EventID        uuid.UUID
	EventType      string
}

// InsertReadMarker returns 0 when the marker already existed.
func (q *Queries) InsertReadMarker(ctx context.Context, arg InsertReadMarkerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertReadMarker, arg.ProfessionalID, arg.EventID, arg.EventType)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listReadEventIDs = `-- name: ListReadEventIDs :many
SELECT event_id FROM notification_read_markers
WHERE professional_id = $1 AND event_id = ANY($2::uuid[])
`

type ListReadEventIDsParams struct {
	ProfessionalID uuid.UUID
	EventIDs       []uuid.UUID
}

func (q *Queries) ListReadEventIDs(ctx context.Context, arg ListReadEventIDsParams) ([]uuid.UUID, error) {
	ids := make([]string, len(arg.EventIDs))
	for i, id := range arg.EventIDs {
		ids[i] = id.String()
	}
	rows, err := q.db.QueryContext(ctx, listReadEventIDs, arg.ProfessionalID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var eventID uuid.UUID
		if err := rows.Scan(&eventID); err != nil {
			return nil, err
		}
		items = append(items, eventID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
