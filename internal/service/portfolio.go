// Package service contains the business logic layer.
//
// This file implements portfolio photo management.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/DukeRupert/vitrine/internal/storage"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// PortfolioService defines operations on a professional's photo portfolio.
type PortfolioService interface {
	// AddPhoto stores a photo and its thumbnail. The professional must be
	// active and under the plan's photo limit.
	AddPhoto(ctx context.Context, upload domain.PhotoUpload) (*domain.PhotoResult, error)

	// RemovePhoto deletes a photo. Removing is allowed in every subscription
	// state so an inactive professional can still tidy their portfolio.
	RemovePhoto(ctx context.Context, professionalID, photoID uuid.UUID) error

	// ListPhotos returns the portfolio in display order.
	ListPhotos(ctx context.Context, professionalID uuid.UUID) ([]domain.PortfolioPhoto, error)

	// PhotoURL returns a URL that serves the stored object.
	PhotoURL(ctx context.Context, key string) (string, error)
}

// =============================================================================
// Implementation
// =============================================================================

type portfolioService struct {
	store      repository.Store
	plans      PlanService
	storage    storage.Storage
	thumbnails ThumbnailProcessor
	logger     *slog.Logger
	now        func() time.Time
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	store repository.Store,
	plans PlanService,
	storage storage.Storage,
	thumbnails ThumbnailProcessor,
	logger *slog.Logger,
) PortfolioService {
	return &portfolioService{
		store:      store,
		plans:      plans,
		storage:    storage,
		thumbnails: thumbnails,
		logger:     logger,
		now:        time.Now,
	}
}

// photoURLExpiry is used by providers that serve photos through presigned URLs.
const photoURLExpiry = time.Hour

func (s *portfolioService) AddPhoto(ctx context.Context, upload domain.PhotoUpload) (*domain.PhotoResult, error) {
	const op = "portfolio.add_photo"

	if upload.Data == nil {
		return nil, domain.Invalid(op, "Photo is required")
	}

	data, err := io.ReadAll(io.LimitReader(upload.Data, domain.MaxImageSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read photo")
	}
	if err := domain.ValidateImageSize(int64(len(data))); err != nil {
		return nil, err
	}

	contentType := storage.SniffContentType(data)
	if !domain.IsValidImageContentType(contentType) {
		return nil, domain.Invalid(op, "Photo must be a JPEG or PNG image")
	}

	// Fail fast before doing any image work. The authoritative check runs
	// again under the row lock below.
	now := s.now()
	if err := s.precheck(ctx, op, upload.ProfessionalID, now); err != nil {
		metrics.PhotoRecorded(blockedOutcome(err))
		return nil, err
	}

	thumb, err := s.thumbnails.GenerateThumbnail(bytes.NewReader(data), domain.ThumbnailMaxWidth, domain.ThumbnailMaxHeight)
	if err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Photo could not be processed")
	}

	photoID := uuid.New()
	key := storage.PhotoKey(upload.ProfessionalID, photoID, contentType)
	thumbKey := storage.PhotoThumbnailKey(upload.ProfessionalID, photoID)

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     domain.MaxImageSize,
		Public:      true,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to store photo")
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(thumb.Data), storage.PutOptions{
		ContentType: "image/jpeg",
		Public:      true,
	}); err != nil {
		s.cleanup(ctx, key)
		return nil, domain.Internal(err, op, "failed to store thumbnail")
	}

	var result *domain.PhotoResult
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		pro, err := lockProfessionalRow(ctx, q, op, upload.ProfessionalID)
		if err != nil {
			return err
		}
		if err := pro.RequireActive(op, now); err != nil {
			return err
		}

		// The plan may have changed since the precheck.
		lockedPlan, err := s.plans.Get(ctx, pro.PlanID)
		if err != nil {
			return err
		}
		usage, err := checkPhotoQuota(ctx, q, op, pro.ID, lockedPlan)
		if err != nil {
			return err
		}

		row, err := q.CreatePortfolioPhoto(ctx, repository.CreatePortfolioPhotoParams{
			ID:             photoID,
			ProfessionalID: pro.ID,
			StorageKey:     key,
			ThumbnailKey:   thumbKey,
			ContentType:    contentType,
			SizeBytes:      int64(len(data)),
			Width:          int32(thumb.OriginalWidth),
			Height:         int32(thumb.OriginalHeight),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record photo")
		}

		result = &domain.PhotoResult{
			Photo: photoFromRow(row),
			Usage: domain.NewQuotaSnapshot(domain.QuotaResourcePhotos, usage.Used+1, lockedPlan),
		}
		return nil
	})
	if err != nil {
		s.cleanup(ctx, key, thumbKey)
		metrics.PhotoRecorded(blockedOutcome(err))
		return nil, err
	}

	metrics.PhotoRecorded(metrics.OutcomeAccepted)
	s.logger.Info("portfolio photo added",
		"professional_id", upload.ProfessionalID,
		"photo_id", photoID,
		"content_type", contentType,
		"size", len(data),
		"used", result.Usage.Used,
	)
	return result, nil
}

// precheck runs the gate and quota checks without locking.
func (s *portfolioService) precheck(ctx context.Context, op string, professionalID uuid.UUID, now time.Time) error {
	row, err := s.store.GetProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "professional", professionalID.String())
		}
		return domain.Internal(err, op, "failed to get professional")
	}
	pro := professionalFromRow(row)
	if err := pro.RequireActive(op, now); err != nil {
		return err
	}

	plan, err := s.plans.Get(ctx, pro.PlanID)
	if err != nil {
		return err
	}
	_, err = checkPhotoQuota(ctx, s.store, op, pro.ID, plan)
	return err
}

func (s *portfolioService) RemovePhoto(ctx context.Context, professionalID, photoID uuid.UUID) error {
	const op = "portfolio.remove_photo"

	row, err := s.store.GetPortfolioPhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "photo", photoID.String())
		}
		return domain.Internal(err, op, "failed to get photo")
	}
	if row.ProfessionalID != professionalID {
		// Do not reveal photos owned by someone else.
		return domain.NotFound(op, "photo", photoID.String())
	}

	if err := s.store.DeletePortfolioPhoto(ctx, photoID); err != nil {
		return domain.Internal(err, op, "failed to delete photo")
	}

	s.cleanup(ctx, row.StorageKey, row.ThumbnailKey)
	s.logger.Info("portfolio photo removed", "professional_id", professionalID, "photo_id", photoID)
	return nil
}

func (s *portfolioService) ListPhotos(ctx context.Context, professionalID uuid.UUID) ([]domain.PortfolioPhoto, error) {
	const op = "portfolio.list_photos"

	rows, err := s.store.ListPortfolioPhotos(ctx, professionalID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list photos")
	}

	photos := make([]domain.PortfolioPhoto, len(rows))
	for i, row := range rows {
		photos[i] = photoFromRow(row)
	}
	return photos, nil
}

func (s *portfolioService) PhotoURL(ctx context.Context, key string) (string, error) {
	const op = "portfolio.photo_url"

	url, err := s.storage.URL(ctx, key, photoURLExpiry)
	if err != nil {
		return "", domain.Internal(err, op, fmt.Sprintf("failed to build url for %s", key))
	}
	return url, nil
}

// cleanup removes stored objects whose database row was never written or
// was deleted. Failures leave orphans behind and are only logged.
func (s *portfolioService) cleanup(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete photo object", "key", key, "error", err)
		}
	}
}

// blockedOutcome maps an AddPhoto failure to its metrics label.
func blockedOutcome(err error) string {
	switch domain.ErrorCode(err) {
	case domain.EQUOTA:
		return metrics.OutcomeQuotaExceeded
	case domain.EINACTIVE:
		return metrics.OutcomeInactive
	default:
		return "error"
	}
}
