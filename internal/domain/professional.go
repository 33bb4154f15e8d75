// Package domain contains core business types and interfaces.
//
// This file defines the Professional type and the subscription state machine.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionalStatus is the stored subscription state of a professional.
//
// The stored value alone never decides whether a professional is active; use
// Professional.IsActive, which also checks the expiry date.
type ProfessionalStatus string

const (
	StatusPending  ProfessionalStatus = "pending"
	StatusActive   ProfessionalStatus = "active"
	StatusInactive ProfessionalStatus = "inactive"
)

// IsValid returns true if the status is a recognized value.
func (s ProfessionalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

// StatusReason records why a professional is in its current stored status.
type StatusReason string

const (
	StatusReasonNone          StatusReason = ""
	StatusReasonExpired       StatusReason = "expired"
	StatusReasonPaymentFailed StatusReason = "payment_failed"
	StatusReasonCanceled      StatusReason = "canceled"
	StatusReasonAdmin         StatusReason = "admin"
)

// InactiveReason tells the caller where to route a blocked professional:
// pending and expired go to payment, admin_deactivated goes to support.
type InactiveReason string

const (
	InactiveReasonPending          InactiveReason = "pending"
	InactiveReasonExpired          InactiveReason = "expired"
	InactiveReasonAdminDeactivated InactiveReason = "admin_deactivated"
)

// Professional is a service provider listed in the marketplace.
type Professional struct {
	ID                    uuid.UUID
	Name                  string
	Email                 string
	Phone                 string
	City                  string
	Description           string
	CategoryID            uuid.UUID
	PlanID                uuid.UUID
	Status                ProfessionalStatus
	StatusReason          StatusReason
	SubscriptionExpiresAt *time.Time
	SubscriptionEventAt   *time.Time
	PaymentCustomerRef    string
	Rating                decimal.Decimal
	TotalReviews          int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsActive is the activeness predicate every component gates on.
// Expiry is lazy: a row stored as active past its expiry is not active.
func (p *Professional) IsActive(now time.Time) bool {
	if p.Status != StatusActive || p.SubscriptionExpiresAt == nil {
		return false
	}
	return !p.SubscriptionExpiresAt.Before(now)
}

// InactiveReason explains why IsActive is false. It returns "" for an
// active professional.
func (p *Professional) InactiveReason(now time.Time) InactiveReason {
	if p.IsActive(now) {
		return ""
	}
	switch {
	case p.Status == StatusPending:
		return InactiveReasonPending
	case p.Status == StatusInactive && p.StatusReason == StatusReasonAdmin:
		return InactiveReasonAdminDeactivated
	default:
		return InactiveReasonExpired
	}
}

// RequireActive returns a SubscriptionInactiveError when the professional
// may not perform gated actions.
func (p *Professional) RequireActive(op string, now time.Time) error {
	if reason := p.InactiveReason(now); reason != "" {
		return SubscriptionInactive(op, reason)
	}
	return nil
}

// RegisterParams contains the parameters for professional signup.
type RegisterParams struct {
	Name        string
	Email       string
	Phone       string
	City        string
	Description string
	CategoryID  uuid.UUID
	PlanID      uuid.UUID
}

// ProfileUpdateParams contains the editable profile fields.
type ProfileUpdateParams struct {
	ProfessionalID uuid.UUID
	Name           string
	Phone          string
	City           string
	Description    string
}

// SubscriptionHistoryEntry is one applied subscription transition.
type SubscriptionHistoryEntry struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	FromStatus     ProfessionalStatus
	ToStatus       ProfessionalStatus
	PlanID         uuid.UUID
	ExpiresAt      *time.Time
	Source         string
	CreatedAt      time.Time
}

// SearchParams filters the public professional search.
type SearchParams struct {
	Query      string
	CategoryID *uuid.UUID
	Limit      int
}
