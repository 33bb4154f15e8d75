package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 80, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// upload posts data in the "photo" field of a multipart form.
func (ts *testServer) upload(professionalID uuid.UUID, field string, data []byte) *httptest.ResponseRecorder {
	ts.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "obra.png")
	require.NoError(ts.t, err)
	_, err = part.Write(data)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest("POST", "/professionals/"+professionalID.String()+"/portfolio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

type uploadResponse struct {
	Photo PhotoResponse `json:"photo"`
	Usage UsageResponse `json:"usage"`
}

func TestPortfolio_UploadListDelete(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	rec := ts.upload(pro.ID, "photo", testPNG(t, 320, 240))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created uploadResponse
	decode(t, rec, &created)
	assert.Equal(t, "image/png", created.Photo.ContentType)
	assert.Equal(t, 320, created.Photo.Width)
	assert.Equal(t, 240, created.Photo.Height)
	assert.True(t, strings.HasPrefix(created.Photo.URL, "http://localhost:8080/files/"), created.Photo.URL)
	assert.NotEqual(t, created.Photo.URL, created.Photo.ThumbnailURL)
	assert.Equal(t, int64(1), created.Usage.Used)
	require.NotNil(t, created.Usage.Remaining)
	assert.Equal(t, int64(4), *created.Usage.Remaining)

	rec = ts.do("GET", "/professionals/"+pro.ID.String()+"/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Photos []PhotoResponse `json:"photos"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Photos, 1)
	assert.Equal(t, created.Photo.ID, list.Photos[0].ID)

	other := ts.activeProfessional(ts.basic, "Bruno Lima")
	rec = ts.do("DELETE", "/professionals/"+other.ID.String()+"/portfolio/"+created.Photo.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "only the owner can delete")

	rec = ts.do("DELETE", "/professionals/"+pro.ID.String()+"/portfolio/"+created.Photo.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do("GET", "/professionals/"+pro.ID.String()+"/portfolio", nil)
	decode(t, rec, &list)
	assert.Empty(t, list.Photos)
}

func TestPortfolio_UploadRejected(t *testing.T) {
	ts := newTestServer(t)
	active := ts.activeProfessional(ts.basic, "Ana Souza")
	pending := ts.pendingProfessional(ts.basic)

	tests := []struct {
		name       string
		id         uuid.UUID
		field      string
		data       []byte
		wantStatus int
		wantCode   string
	}{
		{"pending subscription", pending.ID, "photo", testPNG(t, 10, 10), http.StatusForbidden, "subscription_inactive"},
		{"wrong field", active.ID, "file", testPNG(t, 10, 10), http.StatusBadRequest, "invalid"},
		{"not an image", active.ID, "photo", []byte("%PDF-1.4 not a photo"), http.StatusBadRequest, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.upload(tt.id, tt.field, tt.data)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var body JSONError
			decode(t, rec, &body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestPortfolio_QuotaExceeded(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	for i := 0; i < 5; i++ {
		rec := ts.upload(pro.ID, "photo", testPNG(t, 20, 20))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.upload(pro.ID, "photo", testPNG(t, 20, 20))
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())

	var body JSONError
	decode(t, rec, &body)
	require.NotNil(t, body.Error.Usage)
	assert.Equal(t, "photos", string(body.Error.Usage.Resource))
	assert.Equal(t, int64(5), body.Error.Usage.Used)
}

func TestPortfolio_NotMultipart(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	rec := ts.do("POST", "/professionals/"+pro.ID.String()+"/portfolio", map[string]string{"photo": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
