package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) feed(professionalID uuid.UUID) FeedResponse {
	ts.t.Helper()
	rec := ts.do("GET", "/professionals/"+professionalID.String()+"/notifications", nil)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	var feed FeedResponse
	decode(ts.t, rec, &feed)
	return feed
}

func TestNotifications_FeedAndMarkRead(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	contact := ts.store.AddContactEvent(repository.ContactEvent{
		ProfessionalID: pro.ID,
		CustomerName:   "Carla",
		ContactMethod:  "form",
		CreatedAt:      time.Now().Add(-2 * time.Hour),
	})
	review := ts.store.AddReviewEvent(repository.ReviewEvent{
		ProfessionalID: pro.ID,
		CustomerName:   "Davi",
		Rating:         4,
		CreatedAt:      time.Now().Add(-time.Hour),
	})

	feed := ts.feed(pro.ID)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, 2, feed.UnreadCount)
	assert.Equal(t, review.ID, feed.Items[0].ID, "newest first")
	assert.Equal(t, "review", string(feed.Items[0].Type))
	assert.Equal(t, 4, feed.Items[0].Rating)
	assert.Equal(t, contact.ID, feed.Items[1].ID)

	path := "/professionals/" + pro.ID.String() + "/notifications/read"
	ref := map[string]string{"id": contact.ID.String(), "type": "contact"}

	rec := ts.do("POST", path, ref)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = ts.do("POST", path, ref)
	require.Equal(t, http.StatusNoContent, rec.Code, "marking twice is a no-op")
	assert.Equal(t, 1, ts.store.ReadMarkerCount(pro.ID))

	feed = ts.feed(pro.ID)
	assert.Equal(t, 1, feed.UnreadCount)
	assert.True(t, feed.Items[1].IsRead)
}

func TestNotifications_MarkReadForeignEvent(t *testing.T) {
	ts := newTestServer(t)
	ana := ts.activeProfessional(ts.basic, "Ana Souza")
	bruno := ts.activeProfessional(ts.basic, "Bruno Lima")
	contact := ts.store.AddContactEvent(repository.ContactEvent{
		ProfessionalID: bruno.ID,
		CustomerName:   "Carla",
		ContactMethod:  "form",
	})

	rec := ts.do("POST", "/professionals/"+ana.ID.String()+"/notifications/read",
		map[string]string{"id": contact.ID.String(), "type": "contact"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, ts.store.ReadMarkerCount(ana.ID))
}

func TestNotifications_MarkAllRead(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	ts.addContacts(pro.ID, 3)
	path := "/professionals/" + pro.ID.String() + "/notifications/read-all"

	rec := ts.do("POST", path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]int64
	decode(t, rec, &resp)
	assert.Equal(t, int64(3), resp["marked"])
	assert.Equal(t, 0, ts.feed(pro.ID).UnreadCount)

	rec = ts.do("POST", path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, int64(0), resp["marked"])
}

func TestNotifications_MarkAllReadRejectsForeignIDs(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	own := ts.store.AddContactEvent(repository.ContactEvent{
		ProfessionalID: pro.ID,
		CustomerName:   "Carla",
		ContactMethod:  "form",
	})
	missing := uuid.New()

	rec := ts.do("POST", "/professionals/"+pro.ID.String()+"/notifications/read-all", map[string]interface{}{
		"notifications": []map[string]string{
			{"id": own.ID.String(), "type": "contact"},
			{"id": missing.String(), "type": "review"},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var body JSONError
	decode(t, rec, &body)
	assert.Equal(t, []uuid.UUID{missing}, body.Error.Failed)
	assert.Equal(t, 0, ts.store.ReadMarkerCount(pro.ID), "nothing is marked when any id fails")
}
