// Package domain contains core business types and interfaces.
//
// This file defines the notification feed, a derived view merging contact
// and review events for a professional's dashboard.
package domain

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the event a notification was derived from.
type NotificationType string

const (
	NotificationTypeContact NotificationType = "contact"
	NotificationTypeReview  NotificationType = "review"
)

// IsValid returns true if the type is a recognized value.
func (t NotificationType) IsValid() bool {
	return t == NotificationTypeContact || t == NotificationTypeReview
}

// NotificationItem is one entry of the feed. ID is the source event's id.
type NotificationItem struct {
	ID            uuid.UUID
	Type          NotificationType
	CustomerName  string
	ContactMethod ContactMethod // contacts only
	Message       string
	Rating        int // reviews only
	CreatedAt     time.Time
	IsRead        bool
}

// NotificationRef identifies a notification for read-state operations.
type NotificationRef struct {
	ID   uuid.UUID
	Type NotificationType
}

// Feed is the aggregated notification list for a professional.
type Feed struct {
	Items       []NotificationItem
	UnreadCount int
}

// MergeNotifications tags contacts and reviews, sorts the union by CreatedAt
// descending (ties broken by type then id) and keeps at most limit items.
// A limit <= 0 keeps everything. read holds the ids already marked read.
func MergeNotifications(contacts []ContactEvent, reviews []ReviewEvent, read map[uuid.UUID]bool, limit int) []NotificationItem {
	items := make([]NotificationItem, 0, len(contacts)+len(reviews))
	for _, c := range contacts {
		items = append(items, NotificationItem{
			ID:            c.ID,
			Type:          NotificationTypeContact,
			CustomerName:  c.CustomerName,
			ContactMethod: c.ContactMethod,
			Message:       c.Message,
			CreatedAt:     c.CreatedAt,
			IsRead:        read[c.ID],
		})
	}
	for _, r := range reviews {
		items = append(items, NotificationItem{
			ID:           r.ID,
			Type:         NotificationTypeReview,
			CustomerName: r.CustomerName,
			Message:      r.Comment,
			Rating:       r.Rating,
			CreatedAt:    r.CreatedAt,
			IsRead:       read[r.ID],
		})
	}

	slices.SortFunc(items, func(a, b NotificationItem) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.Type != b.Type {
			if a.Type < b.Type {
				return -1
			}
			return 1
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// CountUnread returns the number of items not yet read.
func CountUnread(items []NotificationItem) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}
