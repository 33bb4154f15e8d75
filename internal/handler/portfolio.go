// This file implements portfolio photo management.
//
// Routes:
//   - GET    /professionals/{id}/portfolio           -> ListPhotos
//   - POST   /professionals/{id}/portfolio           -> Upload
//   - DELETE /professionals/{id}/portfolio/{photoID} -> Delete
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/service"
)

// maxUploadMemory is the multipart form memory limit. Larger parts spill
// to temporary files.
const maxUploadMemory = 12 << 20

// maxUploadBody bounds the whole request: one photo plus form overhead.
const maxUploadBody = domain.MaxImageSize + 1<<20

// PortfolioHandler handles portfolio photo requests.
type PortfolioHandler struct {
	portfolio service.PortfolioService
	logger    *slog.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolio service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		logger:    logger,
	}
}

// RegisterRoutes registers portfolio routes on the provided mux.
// Listing is public. Upload and delete carry no auth here; the upstream
// gateway must authenticate the caller as the professional in the path.
func (h *PortfolioHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /professionals/{id}/portfolio", h.ListPhotos)
	mux.HandleFunc("POST /professionals/{id}/portfolio", h.Upload)
	mux.HandleFunc("DELETE /professionals/{id}/portfolio/{photoID}", h.Delete)
}

func (h *PortfolioHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	photos, err := h.portfolio.ListPhotos(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		photo, err := h.photoResponse(r.Context(), p)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		resp = append(resp, photo)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": resp})
}

// Upload accepts a single JPEG or PNG in the "photo" form field.
func (h *PortfolioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Info("failed to parse multipart form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(w, r, h.logger, &domain.Error{
				Code:    domain.ETOOLARGE,
				Op:      "handler.portfolio_upload",
				Message: "Photo exceeds the 10MB limit",
			})
			return
		}
		BadRequestResponse(w, r, h.logger, "Upload must be a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.NewValidationError("handler.portfolio_upload", "photo", "Photo is required"))
		return
	}
	defer file.Close()

	result, err := h.portfolio.AddPhoto(r.Context(), domain.PhotoUpload{
		ProfessionalID: id,
		Filename:       header.Filename,
		Size:           header.Size,
		Data:           file,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	photo, err := h.photoResponse(r.Context(), result.Photo)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"photo": photo,
		"usage": newUsageResponse(result.Usage),
	})
}

// Delete removes a photo. It works in every subscription state.
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	photoID, err := pathUUID(r, "photoID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.portfolio.RemovePhoto(r.Context(), id, photoID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PortfolioHandler) photoResponse(ctx context.Context, p domain.PortfolioPhoto) (PhotoResponse, error) {
	url, err := h.portfolio.PhotoURL(ctx, p.StorageKey)
	if err != nil {
		return PhotoResponse{}, err
	}
	thumbURL, err := h.portfolio.PhotoURL(ctx, p.ThumbnailKey)
	if err != nil {
		return PhotoResponse{}, err
	}
	return PhotoResponse{
		ID:           p.ID,
		URL:          url,
		ThumbnailURL: thumbURL,
		ContentType:  p.ContentType,
		SizeBytes:    p.SizeBytes,
		Width:        p.Width,
		Height:       p.Height,
		Position:     p.Position,
		CreatedAt:    p.CreatedAt,
	}, nil
}
