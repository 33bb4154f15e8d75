// Package service contains the business logic layer.
//
// This file implements the notification aggregator. The feed is derived on
// read from contact and review events; only read markers are stored.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// NotificationService defines the professional's notification feed.
type NotificationService interface {
	// Feed returns recent contacts and reviews merged newest first, with
	// read state and the unread count.
	Feed(ctx context.Context, professionalID uuid.UUID) (*domain.Feed, error)

	// MarkRead marks one notification read. Marking it again is a no-op.
	// Returns domain.ENOTFOUND if the event does not belong to the
	// professional.
	MarkRead(ctx context.Context, professionalID uuid.UUID, ref domain.NotificationRef) error

	// MarkAllRead marks every ref read, or the whole current feed when refs
	// is empty. If any ref fails validation nothing is written and a
	// *domain.MarkReadError lists the failures. Returns how many markers
	// were newly written.
	MarkAllRead(ctx context.Context, professionalID uuid.UUID, refs []domain.NotificationRef) (int64, error)
}

// =============================================================================
// Implementation
// =============================================================================

type notificationService struct {
	store  repository.Store
	window time.Duration
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService. window bounds
// how far back the feed looks and limit caps its length.
func NewNotificationService(store repository.Store, window time.Duration, limit int, logger *slog.Logger) NotificationService {
	return &notificationService{
		store:  store,
		window: window,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

func (s *notificationService) Feed(ctx context.Context, professionalID uuid.UUID) (*domain.Feed, error) {
	const op = "notification.feed"

	if _, err := s.store.GetProfessional(ctx, professionalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "professional", professionalID.String())
		}
		return nil, domain.Internal(err, op, "failed to get professional")
	}

	params := repository.ListRecentEventsParams{
		ProfessionalID: professionalID,
		Since:          s.now().Add(-s.window),
		Limit:          int32(s.limit),
	}

	contactRows, err := s.store.ListRecentContactEvents(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list contacts")
	}
	reviewRows, err := s.store.ListRecentReviewEvents(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list reviews")
	}

	contacts := make([]domain.ContactEvent, len(contactRows))
	ids := make([]uuid.UUID, 0, len(contactRows)+len(reviewRows))
	for i, row := range contactRows {
		contacts[i] = contactFromRow(row)
		ids = append(ids, row.ID)
	}
	reviews := make([]domain.ReviewEvent, len(reviewRows))
	for i, row := range reviewRows {
		reviews[i] = reviewFromRow(row)
		ids = append(ids, row.ID)
	}

	read := make(map[uuid.UUID]bool)
	if len(ids) > 0 {
		readIDs, err := s.store.ListReadEventIDs(ctx, repository.ListReadEventIDsParams{
			ProfessionalID: professionalID,
			EventIDs:       ids,
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list read markers")
		}
		for _, id := range readIDs {
			read[id] = true
		}
	}

	items := domain.MergeNotifications(contacts, reviews, read, s.limit)
	return &domain.Feed{
		Items:       items,
		UnreadCount: domain.CountUnread(items),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, professionalID uuid.UUID, ref domain.NotificationRef) error {
	const op = "notification.mark_read"

	owned, err := s.owns(ctx, professionalID, ref)
	if err != nil {
		return domain.Internal(err, op, "failed to load notification")
	}
	if !owned {
		return domain.NotFound(op, "notification", ref.ID.String())
	}

	if _, err := s.store.InsertReadMarker(ctx, repository.InsertReadMarkerParams{
		ProfessionalID: professionalID,
		EventID:        ref.ID,
		EventType:      string(ref.Type),
	}); err != nil {
		return domain.Internal(err, op, "failed to mark notification read")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, professionalID uuid.UUID, refs []domain.NotificationRef) (int64, error) {
	const op = "notification.mark_all_read"

	if len(refs) == 0 {
		feed, err := s.Feed(ctx, professionalID)
		if err != nil {
			return 0, err
		}
		for _, item := range feed.Items {
			if !item.IsRead {
				refs = append(refs, domain.NotificationRef{ID: item.ID, Type: item.Type})
			}
		}
	}

	// Validate everything before writing anything.
	var failed []uuid.UUID
	for _, ref := range refs {
		owned, err := s.owns(ctx, professionalID, ref)
		if err != nil {
			return 0, domain.Internal(err, op, "failed to load notification")
		}
		if !owned {
			failed = append(failed, ref.ID)
		}
	}
	if len(failed) > 0 {
		return 0, &domain.MarkReadError{Op: op, Failed: failed}
	}

	var marked int64
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		for _, ref := range refs {
			n, err := q.InsertReadMarker(ctx, repository.InsertReadMarkerParams{
				ProfessionalID: professionalID,
				EventID:        ref.ID,
				EventType:      string(ref.Type),
			})
			if err != nil {
				return domain.Internal(err, op, "failed to mark notifications read")
			}
			marked += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("notifications marked read", "professional_id", professionalID, "count", marked)
	return marked, nil
}

// owns reports whether ref names an event of the given professional.
// Unknown types and missing events are not owned.
func (s *notificationService) owns(ctx context.Context, professionalID uuid.UUID, ref domain.NotificationRef) (bool, error) {
	var (
		owner uuid.UUID
		err   error
	)
	switch ref.Type {
	case domain.NotificationTypeContact:
		var row repository.ContactEvent
		row, err = s.store.GetContactEvent(ctx, ref.ID)
		owner = row.ProfessionalID
	case domain.NotificationTypeReview:
		var row repository.ReviewEvent
		row, err = s.store.GetReviewEvent(ctx, ref.ID)
		owner = row.ProfessionalID
	default:
		return false, nil
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return owner == professionalID, nil
}
