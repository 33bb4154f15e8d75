package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const insertPaymentEvent = `-- name: InsertPaymentEvent :execrows
INSERT INTO payment_events (provider_transaction_id, event_type, payload, outcome)
VALUES ($1, $2, $3, 'received')
ON CONFLICT (provider_transaction_id) DO NOTHING
`

type InsertPaymentEventParams struct {
	TransactionID string
	EventType     string
	Payload       pqtype.NullRawMessage
}

// InsertPaymentEvent records a provider event. It returns 0 when the
// transaction id was already recorded. The professional is linked later by
// SetPaymentEventOutcome, once it has been resolved.
func (q *Queries) InsertPaymentEvent(ctx context.Context, arg InsertPaymentEventParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertPaymentEvent,
		arg.TransactionID,
		arg.EventType,
		arg.Payload,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setPaymentEventOutcome = `-- name: SetPaymentEventOutcome :exec
UPDATE payment_events
SET outcome = $2, professional_id = COALESCE($3, professional_id)
WHERE provider_transaction_id = $1
`

type SetPaymentEventOutcomeParams struct {
	TransactionID  string
	Outcome        string
	ProfessionalID uuid.NullUUID
}

func (q *Queries) SetPaymentEventOutcome(ctx context.Context, arg SetPaymentEventOutcomeParams) error {
	_, err := q.db.ExecContext(ctx, setPaymentEventOutcome, arg.TransactionID, arg.Outcome, arg.ProfessionalID)
	return err
}
