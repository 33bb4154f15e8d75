package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPNG encodes a solid w x h PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateThumbnail(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{name: "landscape is scaled to width", w: 800, h: 400, wantW: 400, wantH: 200},
		{name: "portrait is scaled to height", w: 300, h: 900, wantW: 133, wantH: 400},
		{name: "small image is not upscaled", w: 100, h: 50, wantW: 100, wantH: 50},
	}

	p := NewImagingProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, err := p.GenerateThumbnail(bytes.NewReader(testPNG(t, tt.w, tt.h)), 400, 400)
			require.NoError(t, err)
			assert.Equal(t, tt.w, thumb.OriginalWidth)
			assert.Equal(t, tt.h, thumb.OriginalHeight)

			decoded, format, err := image.Decode(bytes.NewReader(thumb.Data))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.wantW, decoded.Bounds().Dx())
			assert.Equal(t, tt.wantH, decoded.Bounds().Dy())
		})
	}
}

func TestGenerateThumbnail_InvalidImage(t *testing.T) {
	_, err := NewImagingProcessor().GenerateThumbnail(strings.NewReader("not an image"), 400, 400)
	assert.Error(t, err)
}
