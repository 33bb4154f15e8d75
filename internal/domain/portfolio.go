package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// SupportedImageTypes maps MIME types to their human-readable names.
var SupportedImageTypes = map[string]string{
	"image/jpeg": "JPEG",
	"image/png":  "PNG",
}

const (
	// MaxImageSize is the maximum allowed size for portfolio photos (10MB).
	MaxImageSize = 10 * 1024 * 1024

	ThumbnailMaxWidth    = 400
	ThumbnailMaxHeight   = 400
	ThumbnailJPEGQuality = 85
)

// IsValidImageContentType reports whether contentType may be uploaded.
func IsValidImageContentType(contentType string) bool {
	_, ok := SupportedImageTypes[contentType]
	return ok
}

// ValidateImageSize rejects empty and oversized uploads.
func ValidateImageSize(size int64) error {
	if size <= 0 {
		return Invalid("portfolio.validate", "Photo is empty")
	}
	if size > MaxImageSize {
		return &Error{
			Code:    ETOOLARGE,
			Op:      "portfolio.validate",
			Message: "Photo exceeds the 10MB limit",
		}
	}
	return nil
}

// PortfolioPhoto is one photo in a professional's portfolio.
type PortfolioPhoto struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	StorageKey     string
	ThumbnailKey   string
	ContentType    string
	SizeBytes      int64
	Width          int
	Height         int
	Position       int
	CreatedAt      time.Time
}

// PhotoUpload is a portfolio photo being added.
type PhotoUpload struct {
	ProfessionalID uuid.UUID
	Filename       string
	Size           int64
	Data           io.Reader
}

// PhotoResult is returned for an accepted photo.
type PhotoResult struct {
	Photo PortfolioPhoto
	Usage QuotaSnapshot
}
