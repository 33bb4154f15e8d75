// Package domain contains core business types and interfaces.
//
// This file defines quota types for enforcing plan limits on contacts and
// portfolio photos.
package domain

import "time"

// QuotaResource identifies the resource being counted.
type QuotaResource string

const (
	QuotaResourceContacts QuotaResource = "contacts"
	QuotaResourcePhotos   QuotaResource = "photos"
)

// Warning thresholds for the non-blocking "approaching limit" signal.
const (
	ContactWarningThreshold = 2
	PhotoWarningThreshold   = 1
)

// WarningThreshold returns the remaining-count at or below which the resource
// is reported as approaching its limit.
func (r QuotaResource) WarningThreshold() int64 {
	if r == QuotaResourcePhotos {
		return PhotoWarningThreshold
	}
	return ContactWarningThreshold
}

// QuotaSnapshot is usage against a plan limit, computed on read.
// For contacts Used counts the current calendar month only.
type QuotaSnapshot struct {
	Resource         QuotaResource
	Used             int64
	Limit            int64
	Remaining        int64
	Unlimited        bool
	LimitReached     bool
	ApproachingLimit bool
}

// NewQuotaSnapshot builds a snapshot for used against the plan's limit.
func NewQuotaSnapshot(resource QuotaResource, used int64, plan *Plan) QuotaSnapshot {
	limit, ok := plan.Limit(resource)
	if !ok {
		return QuotaSnapshot{
			Resource:  resource,
			Used:      used,
			Unlimited: true,
		}
	}

	remaining := int64(limit) - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaSnapshot{
		Resource:         resource,
		Used:             used,
		Limit:            int64(limit),
		Remaining:        remaining,
		LimitReached:     remaining == 0,
		ApproachingLimit: remaining <= resource.WarningThreshold(),
	}
}

// StartOfMonth returns midnight on the first day of now's calendar month in loc.
func StartOfMonth(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
