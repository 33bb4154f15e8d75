// Package service contains the business logic layer.
//
// This file implements thumbnail generation for portfolio photos.
package service

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// Register decoders for the accepted upload formats.
	_ "image/jpeg"
	_ "image/png"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/disintegration/imaging"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ThumbnailProcessor handles thumbnail generation from images.
type ThumbnailProcessor interface {
	// GenerateThumbnail creates a JPEG thumbnail fitting within
	// maxWidth x maxHeight and returns it with the original dimensions.
	GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) (Thumbnail, error)
}

// Thumbnail is an encoded preview plus the dimensions of its source image.
type Thumbnail struct {
	Data           []byte
	OriginalWidth  int
	OriginalHeight int
}

// =============================================================================
// Implementation
// =============================================================================

type imagingProcessor struct{}

// NewImagingProcessor creates a new thumbnail processor using the imaging library.
func NewImagingProcessor() ThumbnailProcessor {
	return &imagingProcessor{}
}

func (p *imagingProcessor) GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) (Thumbnail, error) {
	img, _, err := image.Decode(data)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()

	// Fit never upscales and keeps the aspect ratio.
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(domain.ThumbnailJPEGQuality)); err != nil {
		return Thumbnail{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return Thumbnail{
		Data:           buf.Bytes(),
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}, nil
}
