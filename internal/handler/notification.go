// This file implements the professional's notification feed.
//
// Routes:
//   - GET  /professionals/{id}/notifications          -> Feed
//   - POST /professionals/{id}/notifications/read     -> MarkRead
//   - POST /professionals/{id}/notifications/read-all -> MarkAllRead
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
	"github.com/google/uuid"
)

// NotificationHandler serves the merged contact and review feed.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// RegisterRoutes registers notification routes on the provided mux.
// The feed exposes customer names and messages. These routes carry no auth
// here; the upstream gateway must authenticate the caller as the
// professional in the path.
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /professionals/{id}/notifications", h.Feed)
	mux.HandleFunc("POST /professionals/{id}/notifications/read", h.MarkRead)
	mux.HandleFunc("POST /professionals/{id}/notifications/read-all", h.MarkAllRead)
}

func (h *NotificationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	feed, err := h.notifications.Feed(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newFeedResponse(feed))
}

type notificationRefRequest struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`
}

func (n notificationRefRequest) ref() domain.NotificationRef {
	return domain.NotificationRef{ID: n.ID, Type: domain.NotificationType(n.Type)}
}

// MarkRead marks one notification as read. Repeating it is a no-op.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req notificationRefRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, req.ref()); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type markAllReadRequest struct {
	Notifications []notificationRefRequest `json:"notifications"`
}

// MarkAllRead marks the listed notifications, or the whole unread feed when
// the list is empty or the body is absent. If any listed notification does
// not belong to the professional nothing is marked and the failed ids are
// returned.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req markAllReadRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
	}

	refs := make([]domain.NotificationRef, len(req.Notifications))
	for i, n := range req.Notifications {
		refs[i] = n.ref()
	}

	marked, err := h.notifications.MarkAllRead(r.Context(), id, refs)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"marked": marked})
}
