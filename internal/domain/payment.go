// Package domain contains core business types and interfaces.
//
// This file defines provider-neutral payment events that drive the
// subscription state machine.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType is the normalized kind of a payment webhook.
type PaymentEventType string

const (
	PaymentEventConfirmed PaymentEventType = "confirmed"
	PaymentEventFailed    PaymentEventType = "failed"
	PaymentEventCanceled  PaymentEventType = "canceled"
)

// IsValid returns true if the type is a recognized value.
func (t PaymentEventType) IsValid() bool {
	switch t {
	case PaymentEventConfirmed, PaymentEventFailed, PaymentEventCanceled:
		return true
	}
	return false
}

// PaymentEvent is a gateway webhook translated into engine terms.
//
// Either ProfessionalID or ExternalCustomerRef identifies the professional.
// PlanID may be nil when the gateway only reports a PriceID.
// TransactionID is the provider's event id and the idempotency key.
type PaymentEvent struct {
	Type                PaymentEventType
	TransactionID       string
	ProfessionalID      *uuid.UUID
	ExternalCustomerRef string
	PlanID              *uuid.UUID
	PriceID             string
	PeriodEnd           time.Time
	OccurredAt          time.Time
	Payload             []byte
}

// ApplyResult is the outcome of processing a payment event. Duplicate and
// stale events are expected outcomes, not errors.
type ApplyResult string

const (
	ApplyResultApplied   ApplyResult = "applied"
	ApplyResultDuplicate ApplyResult = "duplicate"
	ApplyResultStale     ApplyResult = "stale"
	ApplyResultUnmatched ApplyResult = "unmatched"
)

// Validate checks that the event carries what the state machine needs.
func (e PaymentEvent) Validate(op string) error {
	if !e.Type.IsValid() {
		return Invalid(op, "unknown payment event type")
	}
	if e.TransactionID == "" {
		return Invalid(op, "payment event is missing a transaction id")
	}
	if e.ProfessionalID == nil && e.ExternalCustomerRef == "" {
		return Invalid(op, "payment event does not identify a professional")
	}
	if e.Type == PaymentEventConfirmed {
		if e.PlanID == nil && e.PriceID == "" {
			return Invalid(op, "confirmed payment event does not identify a plan")
		}
		if e.PeriodEnd.IsZero() {
			return Invalid(op, "confirmed payment event is missing the period end")
		}
	}
	return nil
}
