// Package domain contains core business types and interfaces.
//
// This file defines subscription plans. Plans are admin-managed and read-only
// from the engine's point of view.
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is a subscription tier.
//
// A nil MaxContacts or MaxPhotos means the resource is unlimited.
type Plan struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	MaxContacts   *int
	MaxPhotos     *int
	MonthlyPrice  decimal.Decimal // BRL
	IsFeatured    bool
	StripePriceID string
}

// ContactsUnlimited reports whether the plan has no monthly contact cap.
func (p *Plan) ContactsUnlimited() bool {
	return p.MaxContacts == nil
}

// PhotosUnlimited reports whether the plan has no portfolio size cap.
func (p *Plan) PhotosUnlimited() bool {
	return p.MaxPhotos == nil
}

// Limit returns the cap for a resource and whether one exists.
func (p *Plan) Limit(resource QuotaResource) (int, bool) {
	var limit *int
	switch resource {
	case QuotaResourceContacts:
		limit = p.MaxContacts
	case QuotaResourcePhotos:
		limit = p.MaxPhotos
	}
	if limit == nil {
		return 0, false
	}
	return *limit, true
}

// IntPtr is a helper for building plans with finite limits.
func IntPtr(v int) *int {
	return &v
}
